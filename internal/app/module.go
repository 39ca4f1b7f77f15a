package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/salesreport/internal/app/api/server"
	"github.com/fatflowers/salesreport/internal/app/service/account"
	"github.com/fatflowers/salesreport/internal/app/service/analytics"
	"github.com/fatflowers/salesreport/internal/app/service/entitlement"
	"github.com/fatflowers/salesreport/internal/app/service/gamification"
	"github.com/fatflowers/salesreport/internal/app/service/generation"
	"github.com/fatflowers/salesreport/internal/app/service/history"
	"github.com/fatflowers/salesreport/internal/app/service/referral"
	"github.com/fatflowers/salesreport/internal/app/service/verification"
	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/platform/db"
	"github.com/fatflowers/salesreport/internal/platform/marketing"
	"github.com/fatflowers/salesreport/internal/platform/oracle"
	"github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	oracle.Module,
	marketing.Module,
	server.Module,
	entitlement.Module,
	gamification.Module,
	verification.Module,
	referral.Module,
	generation.Module,
	history.Module,
	account.Module,
	analytics.Module,
)
