package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/platform/oracle"
	"github.com/fatflowers/salesreport/pkg/types"
)

type stubOracle struct {
	configured bool
	response   string
	err        error
	lastReq    *oracle.CompletionRequest
}

func (s *stubOracle) Complete(_ context.Context, req *oracle.CompletionRequest) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func (s *stubOracle) Configured() bool { return s.configured }

func TestReport_RequiresInput(t *testing.T) {
	svc := NewService(&stubOracle{configured: true}, zap.NewNop().Sugar())
	_, err := svc.Report(context.Background(), "  ", FormatSimple, "", types.PlanFree)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestReport_UnknownFormatFallsBackToSimple(t *testing.T) {
	stub := &stubOracle{configured: true, response: "generated"}
	svc := NewService(stub, zap.NewNop().Sugar())

	out, err := svc.Report(context.Background(), "met the client", "no-such-format", "", types.PlanFree)
	require.NoError(t, err)
	require.Equal(t, "generated", out)
	require.Equal(t, reportPrompts[FormatSimple], stub.lastReq.System)
	require.Contains(t, stub.lastReq.User, "met the client")
}

func TestReport_CustomTemplateGatedByPlan(t *testing.T) {
	stub := &stubOracle{configured: true, response: "generated"}
	svc := NewService(stub, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := svc.Report(ctx, "notes", FormatSimple, "my template", types.PlanFree)
	require.ErrorIs(t, err, ErrCustomTemplateNotAllowed)
	_, err = svc.Report(ctx, "notes", FormatSimple, "my template", types.PlanBasic)
	require.ErrorIs(t, err, ErrCustomTemplateNotAllowed)

	_, err = svc.Report(ctx, "notes", FormatSimple, "my template", types.PlanPro)
	require.NoError(t, err)
	require.Contains(t, stub.lastReq.System, "my template")
}

func TestReport_TestModeWithoutKey(t *testing.T) {
	svc := NewService(&stubOracle{configured: false}, zap.NewNop().Sugar())
	out, err := svc.Report(context.Background(), "notes", FormatSimple, "", types.PlanFree)
	require.NoError(t, err)
	require.Equal(t, testModeReport, out)
}

func TestCoaching_ParsesAnalysisAndAttachesWisdom(t *testing.T) {
	stub := &stubOracle{configured: true, response: `{
		"totalScore": 72,
		"categories": {
			"offer": {"score": 25, "details": {"clarity": 9, "priceReason": 8, "takeaway": 8}},
			"closing": {"score": 20, "details": {"benefitRepeat": 4, "guarantee": 4, "askForSale": 4, "nextStep": 4, "yesSet": 4}},
			"priceNegotiation": {"score": 15, "details": {"confidence": 8, "objectionHandling": 7}},
			"followUp": {"score": 12, "details": {"nextAppointment": 6, "followUpPlan": 6}}
		},
		"goodPoints": ["clear offer"],
		"improvementPoints": ["weak follow up"],
		"improvedScript": "say this instead",
		"weakestArea": "followUp"
	}`}
	svc := NewService(stub, zap.NewNop().Sugar())

	result, err := svc.Coaching(context.Background(), "the transcript")
	require.NoError(t, err)
	require.True(t, stub.lastReq.JSONObject)
	require.Equal(t, 72, result.TotalScore)
	require.Equal(t, 25, result.Categories["offer"].Score)
	require.Equal(t, "followUp", result.WeakestArea)
	require.Equal(t, "フォローアップが弱い", result.Wisdom.Situation)
}

func TestCoaching_InvalidJSON(t *testing.T) {
	svc := NewService(&stubOracle{configured: true, response: "sorry, no JSON"}, zap.NewNop().Sugar())
	_, err := svc.Coaching(context.Background(), "transcript")
	require.ErrorIs(t, err, ErrAnalysisParse)
}

func TestCoaching_MissingWeakestAreaDefaultsToClosing(t *testing.T) {
	svc := NewService(&stubOracle{configured: true, response: `{"totalScore": 50}`}, zap.NewNop().Sugar())
	result, err := svc.Coaching(context.Background(), "transcript")
	require.NoError(t, err)
	require.Equal(t, "closing", result.WeakestArea)
	require.Equal(t, "クロージングが弱い", result.Wisdom.Situation)
}

func TestWisdomForArea_PriorityAndDefault(t *testing.T) {
	require.Equal(t, "オファーが不明確", wisdomForArea("offer").Situation)
	require.Equal(t, "価格で負ける", wisdomForArea("priceNegotiation").Situation)
	// unrecognized areas get the first entry
	require.Equal(t, salesWisdom[0].Situation, wisdomForArea("mystery").Situation)
}

func TestWeekly_JoinsDatedReports(t *testing.T) {
	stub := &stubOracle{configured: true, response: "weekly"}
	svc := NewService(stub, zap.NewNop().Sugar())

	out, err := svc.Weekly(context.Background(), []DailyReport{
		{Date: "2026-08-24", Content: "visited A"},
		{Content: "visited B"},
	})
	require.NoError(t, err)
	require.Equal(t, "weekly", out)
	require.Contains(t, stub.lastReq.User, "【2026-08-24】\nvisited A")
	require.Contains(t, stub.lastReq.User, "【Day 2】\nvisited B")
	require.True(t, strings.Contains(stub.lastReq.User, "---"))
}

func TestWeekly_RequiresReports(t *testing.T) {
	svc := NewService(&stubOracle{configured: true}, zap.NewNop().Sugar())
	_, err := svc.Weekly(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}
