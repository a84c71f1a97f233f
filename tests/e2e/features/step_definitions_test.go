package features

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/epinio/epinio-e2e/internal/session"
	"github.com/epinio/epinio-e2e/internal/steps"
	"github.com/epinio/epinio-e2e/tests/e2e/helpers"
)

// live is shared by all scenarios; one browser serves the whole run.
var live *session.Session

type menuContext struct {
	s *session.Session
	e *steps.Epinio
}

func (m *menuContext) iAmLoggedIn(ctx context.Context) error {
	if err := m.s.Login(ctx); err != nil {
		return err
	}
	return m.e.Visit(ctx, "/")
}

func (m *menuContext) iOpenTheEpinioMenu(ctx context.Context) error {
	if !m.s.Config.IsRancher() {
		return nil
	}
	if err := m.e.OpenIfClosed(ctx); err != nil {
		return err
	}
	if err := m.e.EpinioIcon(ctx); err != nil {
		return err
	}
	return m.e.AccessEpinioMenu(ctx, m.s.Config.Cluster)
}

func (m *menuContext) theEpinioSideMenuIsShown(ctx context.Context) error {
	return m.e.CheckEpinioNav(ctx)
}

func (m *menuContext) iDeleteAll(ctx context.Context, resource string) error {
	return m.e.DeleteAll(ctx, resource)
}

func (m *menuContext) iClickTheMenuEntry(ctx context.Context, label string) error {
	return m.e.ClickEpinioMenu(ctx, label)
}

func (m *menuContext) iClickTheButton(ctx context.Context, label string) error {
	return m.e.ClickButton(ctx, label)
}

func (m *menuContext) iGoBack(ctx context.Context) error {
	return m.e.GoBack(ctx)
}

func (m *menuContext) iCreateTheNamespace(ctx context.Context, name string) error {
	return m.e.CreateNamespace(ctx, name)
}

func (m *menuContext) theDashboardShowsNamespaces(ctx context.Context, n string) error {
	return m.e.CheckDashboardResources(ctx, steps.DashboardExpectation{NamespaceNumber: n})
}

func (m *menuContext) theWelcomeScreenIsShown(ctx context.Context) error {
	return m.e.ExpectWelcome(ctx)
}

func (m *menuContext) iShouldSee(ctx context.Context, text string) error {
	return m.e.ExpectText(ctx, text)
}

func (m *menuContext) shouldBeVisibleIn(ctx context.Context, text, selector string) error {
	return m.e.CheckElementVisibility(ctx, selector, text)
}

func (m *menuContext) theLinkLeadsTo(ctx context.Context, text, href, landing string) error {
	return m.e.CheckLink(ctx, steps.LinkCheck{Text: text, Href: href, LandingText: landing})
}

func (m *menuContext) theLinkPointsTo(ctx context.Context, text, href string) error {
	return m.e.CheckLink(ctx, steps.LinkCheck{Text: text, Href: href})
}

func (m *menuContext) theAboutPageShowsBinaries(ctx context.Context) error {
	if err := m.e.CheckLink(ctx, steps.LinkCheck{Text: "v", Href: "/epinio/c/default/about", Stay: true}); err != nil {
		return err
	}
	return m.e.AboutPage(ctx, steps.AboutOptions{CheckBinariesNumber: true})
}

func (m *menuContext) theAboutVersionMatches(ctx context.Context) error {
	return m.e.AboutPage(ctx, steps.AboutOptions{CompareVersionVsMainPage: true})
}

func (m *menuContext) iLogInAs(ctx context.Context, username, password, outcome string) error {
	if err := helpers.Logout(ctx, m.e); err != nil {
		return err
	}
	c := helpers.Credential{Username: username, Password: password}
	switch strings.TrimSpace(outcome) {
	case "accepted":
		return helpers.ExpectLoginAccepted(ctx, m.e, c)
	case "rejected":
		return helpers.ExpectLoginRejected(ctx, m.e, c)
	default:
		return fmt.Errorf("unknown login outcome %q", outcome)
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	m := &menuContext{s: live, e: live.Epinio}

	sc.Step(`^I am logged in$`, m.iAmLoggedIn)
	sc.Step(`^I open the Epinio menu$`, m.iOpenTheEpinioMenu)
	sc.Step(`^the Epinio side menu is shown$`, m.theEpinioSideMenuIsShown)
	sc.Step(`^I delete all "([^"]*)"$`, m.iDeleteAll)
	sc.Step(`^I click the "([^"]*)" menu entry$`, m.iClickTheMenuEntry)
	sc.Step(`^I click the "([^"]*)" button$`, m.iClickTheButton)
	sc.Step(`^I go back$`, m.iGoBack)
	sc.Step(`^I create the namespace "([^"]*)"$`, m.iCreateTheNamespace)
	sc.Step(`^the dashboard shows "(\d+)" namespaces$`, m.theDashboardShowsNamespaces)
	sc.Step(`^the welcome screen is shown$`, m.theWelcomeScreenIsShown)
	sc.Step(`^I should see "([^"]*)"$`, m.iShouldSee)
	sc.Step(`^"([^"]*)" should be visible in "([^"]*)"$`, m.shouldBeVisibleIn)
	sc.Step(`^the link "([^"]*)" to "([^"]*)" lands on "([^"]*)"$`, m.theLinkLeadsTo)
	sc.Step(`^the link "([^"]*)" points to "([^"]*)"$`, m.theLinkPointsTo)
	sc.Step(`^the About page lists the binaries$`, m.theAboutPageShowsBinaries)
	sc.Step(`^the About page shows the dashboard version$`, m.theAboutVersionMatches)
	sc.Step(`^logging in as "([^"]*)" with "([^"]*)" is (accepted|rejected)$`, m.iLogInAs)
}
