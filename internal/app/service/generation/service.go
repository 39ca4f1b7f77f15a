// Package generation is the boundary to the text-generation oracle. It owns
// prompt selection, input validation, coaching-output parsing, and the
// weakest-area tip lookup; the oracle itself stays an opaque completion call.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/platform/oracle"
	"github.com/fatflowers/salesreport/pkg/types"
)

var (
	ErrEmptyInput = errors.New("input text is required")
	// ErrCustomTemplateNotAllowed gates free-form templates to the plans that
	// include them.
	ErrCustomTemplateNotAllowed = errors.New("custom templates require an upgraded plan")
	ErrAnalysisParse            = errors.New("failed to parse coaching analysis")
)

type Service struct {
	oracle oracle.Client
	log    *zap.SugaredLogger
}

func NewService(client oracle.Client, log *zap.SugaredLogger) *Service {
	return &Service{oracle: client, log: log}
}

// TestMode reports whether the oracle is unconfigured. Generation endpoints
// then return canned responses instead of failing, so the rest of the system
// stays exercisable without an API key.
func (s *Service) TestMode() bool {
	return !s.oracle.Configured()
}

// Report turns free-text meeting notes into a formatted daily report. An
// unknown format falls back to the simple template; a custom template takes
// precedence when the plan allows one.
func (s *Service) Report(ctx context.Context, input, format, customTemplate string, plan types.Plan) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if customTemplate != "" && !plan.AllowsCustomTemplate() {
		return "", ErrCustomTemplateNotAllowed
	}

	if s.TestMode() {
		return testModeReport, nil
	}

	system, ok := reportPrompts[format]
	if !ok {
		system = reportPrompts[FormatSimple]
	}
	if customTemplate != "" {
		system = fmt.Sprintf(customPromptWrapper, customTemplate)
	}

	return s.oracle.Complete(ctx, &oracle.CompletionRequest{
		System:      system,
		User:        "以下の商談メモから日報を作成してください:\n\n" + input,
		Temperature: 0.7,
		MaxTokens:   1500,
	})
}

// CategoryScore is one scored rubric category with its sub-criteria.
type CategoryScore struct {
	Score   int            `json:"score"`
	Details map[string]int `json:"details"`
}

// CoachingAnalysis is the oracle's structured score for one transcript.
type CoachingAnalysis struct {
	TotalScore        int                      `json:"totalScore"`
	Categories        map[string]CategoryScore `json:"categories"`
	GoodPoints        []string                 `json:"goodPoints"`
	ImprovementPoints []string                 `json:"improvementPoints"`
	ImprovedScript    string                   `json:"improvedScript"`
	WeakestArea       string                   `json:"weakestArea"`
}

// CoachingResult pairs the analysis with the canned tip for its weakest area.
type CoachingResult struct {
	CoachingAnalysis
	Wisdom *SalesWisdom `json:"salesWisdom"`
}

// Coaching scores a sales transcript against the fixed 30/30/20/20 rubric.
func (s *Service) Coaching(ctx context.Context, transcript string) (*CoachingResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyInput
	}

	if s.TestMode() {
		return testModeCoaching(), nil
	}

	raw, err := s.oracle.Complete(ctx, &oracle.CompletionRequest{
		System:      coachingSystemPrompt,
		User:        "以下の商談内容を分析してください:\n\n" + transcript,
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONObject:  true,
	})
	if err != nil {
		return nil, err
	}

	var analysis CoachingAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		s.log.Warnw("coaching analysis was not valid JSON", "err", err)
		return nil, ErrAnalysisParse
	}
	if analysis.WeakestArea == "" {
		analysis.WeakestArea = "closing"
	}

	return &CoachingResult{
		CoachingAnalysis: analysis,
		Wisdom:           wisdomForArea(analysis.WeakestArea),
	}, nil
}

// DailyReport is one dated entry fed into the weekly summary.
type DailyReport struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Weekly condenses a week of daily reports into one manager-facing summary.
func (s *Service) Weekly(ctx context.Context, reports []DailyReport) (string, error) {
	if len(reports) == 0 {
		return "", ErrEmptyInput
	}

	if s.TestMode() {
		return testModeWeekly, nil
	}

	parts := make([]string, 0, len(reports))
	for i, r := range reports {
		date := r.Date
		if date == "" {
			date = fmt.Sprintf("Day %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("【%s】\n%s", date, r.Content))
	}

	return s.oracle.Complete(ctx, &oracle.CompletionRequest{
		System:      weeklySystemPrompt,
		User:        "以下の1週間分の日報から週次レポートを作成してください:\n\n" + strings.Join(parts, "\n\n---\n\n"),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
}

const testModeReport = `■ 訪問先: （テストモード）
■ 担当者: -
■ 内容:
  - APIキーが未設定のため、定型の日報を返しています
■ 次のアクション: ORACLE_API_KEY を設定してください`

const testModeWeekly = `📊 週次営業レポート（テストモード）
APIキーが未設定のため、定型の週次レポートを返しています。`

func testModeCoaching() *CoachingResult {
	analysis := CoachingAnalysis{
		Categories: map[string]CategoryScore{
			"offer":            {Details: map[string]int{"clarity": 0, "priceReason": 0, "takeaway": 0}},
			"closing":          {Details: map[string]int{"benefitRepeat": 0, "guarantee": 0, "askForSale": 0, "nextStep": 0, "yesSet": 0}},
			"priceNegotiation": {Details: map[string]int{"confidence": 0, "objectionHandling": 0}},
			"followUp":         {Details: map[string]int{"nextAppointment": 0, "followUpPlan": 0}},
		},
		GoodPoints:        []string{"（テストモード）APIキーが未設定です"},
		ImprovementPoints: []string{"ORACLE_API_KEY を設定してください"},
		WeakestArea:       "closing",
	}
	return &CoachingResult{
		CoachingAnalysis: analysis,
		Wisdom:           wisdomForArea(analysis.WeakestArea),
	}
}
