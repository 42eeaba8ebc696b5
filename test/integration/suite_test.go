//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	stack   *stack
	visitor *visitor

	status int
	body   []byte
}

func (tc *testContext) start(ctx context.Context) error {
	s, err := newStack(ctx)
	if err != nil {
		return err
	}

	v, err := s.newVisitor()
	if err != nil {
		s.close()
		return err
	}

	tc.stack, tc.visitor = s, v
	tc.status, tc.body = 0, nil

	return nil
}

func (tc *testContext) stop() {
	if tc.stack != nil {
		tc.stack.close()
		tc.stack = nil
	}
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &testContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, tc.start(ctx)
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.stop()
		return ctx, err
	})

	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^the form relay is (accepting|failing)$`, tc.theFormRelayIs)
	ctx.Step(`^I request GET "([^"]*)"$`, tc.iRequestGET)
	ctx.Step(`^I POST "([^"]*)"$`, tc.iPOST)
	ctx.Step(`^I POST "([^"]*)" with:$`, tc.iPOSTWith)
	ctx.Step(`^I answer every quiz question$`, tc.iAnswerEveryQuizQuestion)
	ctx.Step(`^I choose "([^"]*)"$`, tc.iChoose)
	ctx.Step(`^I submit my details as "([^"]*)" "([^"]*)" with email "([^"]*)"$`, tc.iSubmitMyDetails)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, tc.theResponseFieldShouldBe)
	ctx.Step(`^the relay should have received (\d+) leads?$`, tc.theRelayShouldHaveReceived)
	ctx.Step(`^the last lead's "([^"]*)" should contain "([^"]*)"$`, tc.theLastLeadShouldContain)
}

func (tc *testContext) request(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, data, err := tc.visitor.do(ctx, method, path, body)
	if err != nil {
		return err
	}

	tc.status, tc.body = status, data

	return nil
}

func (tc *testContext) theServiceIsRunning() error {
	if err := tc.request(http.MethodGet, "/-/live", ""); err != nil {
		return fmt.Errorf("service is not running: %w", err)
	}

	if tc.status != http.StatusOK {
		return fmt.Errorf("liveness check failed with status %d", tc.status)
	}

	return nil
}

func (tc *testContext) theFormRelayIs(state string) error {
	tc.stack.relay.failing.Store(state == "failing")
	return nil
}

func (tc *testContext) iRequestGET(path string) error {
	return tc.request(http.MethodGet, path, "")
}

func (tc *testContext) iPOST(path string) error {
	return tc.request(http.MethodPost, path, "")
}

func (tc *testContext) iPOSTWith(path string, doc *godog.DocString) error {
	return tc.request(http.MethodPost, path, doc.Content)
}

func (tc *testContext) iAnswerEveryQuizQuestion() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tc.visitor.completeQuiz(ctx); err != nil {
		return err
	}

	return tc.request(http.MethodGet, "/api/v1/quiz", "")
}

func (tc *testContext) iChoose(option string) error {
	body, err := json.Marshal(map[string]string{"option": option})
	if err != nil {
		return err
	}

	return tc.request(http.MethodPost, "/api/v1/quiz/answers", string(body))
}

func (tc *testContext) iSubmitMyDetails(first, last, email string) error {
	body, err := json.Marshal(map[string]string{"first_name": first, "last_name": last, "email": email})
	if err != nil {
		return err
	}

	return tc.request(http.MethodPost, "/api/v1/quiz/submit", string(body))
}

func (tc *testContext) theResponseStatusShouldBe(expected int) error {
	if tc.status != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, tc.status, tc.body)
	}

	return nil
}

func (tc *testContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(tc.body), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.body)
	}

	return nil
}

// theResponseFieldShouldBe compares a dotted path into the JSON body.
func (tc *testContext) theResponseFieldShouldBe(path, expected string) error {
	var doc any
	if err := json.Unmarshal(tc.body, &doc); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}

	for _, key := range strings.Split(path, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q: %v is not an object", key, doc)
		}

		if doc, ok = obj[key]; !ok {
			return fmt.Errorf("field %q missing.\nBody: %s", path, tc.body)
		}
	}

	if got := fmt.Sprint(doc); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", path, expected, got)
	}

	return nil
}

func (tc *testContext) theRelayShouldHaveReceived(n int) error {
	if got := len(tc.stack.relay.received()); got != n {
		return fmt.Errorf("expected %d relayed leads, got %d", n, got)
	}

	return nil
}

func (tc *testContext) theLastLeadShouldContain(field, text string) error {
	leads := tc.stack.relay.received()
	if len(leads) == 0 {
		return fmt.Errorf("no leads relayed")
	}

	if value := leads[len(leads)-1][field]; !strings.Contains(value, text) {
		return fmt.Errorf("lead %s %q does not contain %q", field, value, text)
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
