package invite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	DELETE(path string, body any) error
	UploadFile(path, filename, content string) error
	GetLastStatus() int
	GetLastBody() string
	GetResponseField(field string) (any, error)
	Set(key, value string)
	Get(key string) string
}

// RegisterSteps registers invite flow step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &inviteSteps{tc: tc}

	ctx.Step(`^I open an invite flow for org "([^"]*)"$`, steps.openFlow)
	ctx.Step(`^I open an invite flow for org "([^"]*)" and group "([^"]*)"$`, steps.openFlowForGroup)
	ctx.Step(`^I add the text "([^"]*)"$`, steps.addText)
	ctx.Step(`^I add the text "([^"]*)" clearing errored emails$`, steps.addTextClearing)
	ctx.Step(`^I upload a CSV file "([^"]*)" containing:$`, steps.uploadCSV)
	ctx.Step(`^I select the learners "([^"]*)"$`, steps.selectLearners)
	ctx.Step(`^I remove the emails "([^"]*)"$`, steps.removeEmails)
	ctx.Step(`^I submit the invite flow$`, steps.submit)
	ctx.Step(`^I close the invite flow$`, steps.closeFlow)
	ctx.Step(`^I fetch the invite flow$`, steps.fetchFlow)

	ctx.Step(`^the "([^"]*)" list should contain "([^"]*)"$`, steps.listShouldContain)
	ctx.Step(`^the "([^"]*)" list should be empty$`, steps.listShouldBeEmpty)
	ctx.Step(`^the skipped group members should be "([^"]*)"$`, steps.skippedShouldBe)
}

type inviteSteps struct {
	tc TestContext
}

func (s *inviteSteps) flowPath(suffix string) string {
	return "/admin/invite-flows/" + s.tc.Get("flow_id") + suffix
}

func (s *inviteSteps) openFlow(ctx context.Context, orgID string) error {
	return s.open(orgID, map[string]any{})
}

func (s *inviteSteps) openFlowForGroup(ctx context.Context, orgID, groupID string) error {
	return s.open(orgID, map[string]any{"group_id": groupID})
}

func (s *inviteSteps) open(orgID string, body map[string]any) error {
	if err := s.tc.POST("/admin/orgs/"+orgID+"/invite-flows", body); err != nil {
		return err
	}
	if s.tc.GetLastStatus() != 201 {
		return nil
	}
	flowID, err := s.tc.GetResponseField("flow_id")
	if err != nil {
		return err
	}
	s.tc.Set("flow_id", fmt.Sprint(flowID))
	return nil
}

func (s *inviteSteps) addText(ctx context.Context, text string) error {
	return s.tc.POST(s.flowPath("/emails"), map[string]any{"text": unescape(text)})
}

func (s *inviteSteps) addTextClearing(ctx context.Context, text string) error {
	return s.tc.POST(s.flowPath("/emails"), map[string]any{
		"text":                 unescape(text),
		"clear_errored_emails": true,
	})
}

func (s *inviteSteps) uploadCSV(ctx context.Context, filename string, doc *godog.DocString) error {
	return s.tc.UploadFile(s.flowPath("/emails/csv"), filename, doc.Content)
}

func (s *inviteSteps) selectLearners(ctx context.Context, emails string) error {
	return s.tc.POST(s.flowPath("/selection"), map[string]any{"emails": splitList(emails)})
}

func (s *inviteSteps) removeEmails(ctx context.Context, emails string) error {
	return s.tc.DELETE(s.flowPath("/emails"), map[string]any{"emails": splitList(emails)})
}

func (s *inviteSteps) submit(ctx context.Context) error {
	return s.tc.POST(s.flowPath("/submit"), map[string]any{})
}

func (s *inviteSteps) closeFlow(ctx context.Context) error {
	return s.tc.DELETE(s.flowPath(""), nil)
}

func (s *inviteSteps) fetchFlow(ctx context.Context) error {
	return s.tc.GET(s.flowPath("?expanded=true"))
}

func (s *inviteSteps) listShouldContain(ctx context.Context, list, email string) error {
	shown, err := s.shown(list)
	if err != nil {
		return err
	}
	if !slices.Contains(shown, email) {
		return fmt.Errorf("expected %s to contain %q, got %v", list, email, shown)
	}
	return nil
}

func (s *inviteSteps) listShouldBeEmpty(ctx context.Context, list string) error {
	shown, err := s.shown(list)
	if err != nil {
		return err
	}
	if len(shown) != 0 {
		return fmt.Errorf("expected %s to be empty, got %v", list, shown)
	}
	return nil
}

func (s *inviteSteps) skippedShouldBe(ctx context.Context, emails string) error {
	raw, err := s.tc.GetResponseField("skipped_group_members")
	if err != nil {
		return err
	}
	got := toStrings(raw)
	if want := splitList(emails); !slices.Equal(got, want) {
		return fmt.Errorf("expected skipped %v, got %v", want, got)
	}
	return nil
}

func (s *inviteSteps) shown(list string) ([]string, error) {
	raw, err := s.tc.GetResponseField("state." + list + ".shown")
	if err != nil {
		return nil, err
	}
	return toStrings(raw), nil
}

func toStrings(raw any) []string {
	items, _ := raw.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// unescape turns a literal \n in a step argument into a newline.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
