package steps

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/epinio/epinio-e2e/internal/browser"
)

// Resource lists that DeleteAll can empty.
const (
	ResourceApplications   = "Applications"
	ResourceNamespaces     = "Namespaces"
	ResourceServices       = "Services"
	ResourceConfigurations = "Configurations"
)

var resourceRoutes = map[string]string{
	ResourceApplications:   "applications",
	ResourceNamespaces:     "namespaces",
	ResourceServices:       "services",
	ResourceConfigurations: "configurations",
}

// Visit opens a console path.
func (e *Epinio) Visit(ctx context.Context, path string) error {
	return e.d.Visit(ctx, path)
}

// ClickEpinioMenu clicks an entry of the Epinio side navigation.
func (e *Epinio) ClickEpinioMenu(ctx context.Context, label string) error {
	e.log.Info("click epinio menu", zap.String("label", label))
	if err := e.d.Click(ctx, browser.Sel(selSideNavLabel).Contains(label).Within(longWait)); err != nil {
		return fmt.Errorf("failed to open %s menu: %w", label, err)
	}
	if label == "Dashboard" {
		return nil
	}
	return e.d.WaitVisible(ctx, browser.Sel(selOutletHeader).Contains(label).Within(longWait))
}

// ClickMenuGroup clicks a collapsible group of the side navigation.
func (e *Epinio) ClickMenuGroup(ctx context.Context, label string) error {
	return e.d.Click(ctx, browser.Sel(selMenuGroup).Contains(label).Within(longWait))
}

// ExpandMenuGroup clicks the chevron of the i-th side navigation group.
func (e *Epinio) ExpandMenuGroup(ctx context.Context, i int) error {
	return e.d.Click(ctx, browser.Sel(selMenuGroupIcon).Nth(i))
}

// ClickButton clicks the first button whose label contains label.
func (e *Epinio) ClickButton(ctx context.Context, label string) error {
	e.log.Debug("click button", zap.String("label", label))
	return e.d.Click(ctx, browser.Sel(selButton).Contains(label).Within(longWait))
}

// ClickText clicks the first element showing text.
func (e *Epinio) ClickText(ctx context.Context, text string) error {
	return e.d.Click(ctx, browser.Text(text))
}

// TypeValue fills the labeled input whose label contains label.
func (e *Epinio) TypeValue(ctx context.Context, label, value string) error {
	t := browser.Sel(selLabeledInput).Contains(label).Find("input")
	if err := e.d.Fill(ctx, t, value); err != nil {
		return fmt.Errorf("failed to type %s: %w", label, err)
	}
	return nil
}

// CheckElementVisibility waits for selector containing text.
func (e *Epinio) CheckElementVisibility(ctx context.Context, selector, text string) error {
	return e.d.WaitVisible(ctx, browser.Sel(selector).Contains(text).Within(longWait))
}

// ExpectText waits until text is shown somewhere on the page.
func (e *Epinio) ExpectText(ctx context.Context, text string) error {
	return e.d.WaitVisible(ctx, browser.Text(text).Within(longWait))
}

// ExpectNoText waits until no element shows text.
func (e *Epinio) ExpectNoText(ctx context.Context, text string) error {
	return e.d.WaitHidden(ctx, browser.Text(text))
}

// GoBack navigates back in the browser history.
func (e *Epinio) GoBack(ctx context.Context) error {
	return e.d.Back(ctx)
}

func external(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// CheckLink asserts a link points to Href. Same-origin links are followed
// and the landing page must show LandingText.
func (e *Epinio) CheckLink(ctx context.Context, l LinkCheck) error {
	if err := e.check(l); err != nil {
		return err
	}
	e.log.Info("check link", zap.String("text", l.Text), zap.String("href", l.Href))
	link := browser.Sel(fmt.Sprintf("a[href*=%q]", l.Href)).Contains(l.Text).Within(longWait)
	href, err := e.d.Attribute(ctx, link, "href")
	if err != nil {
		return err
	}
	if !strings.Contains(href, l.Href) {
		return browser.Mismatch(link, "linking to "+l.Href, href)
	}
	if external(l.Href) {
		return nil
	}
	if err := e.d.Click(ctx, link); err != nil {
		return err
	}
	if err := e.d.WaitURL(ctx, l.Href); err != nil {
		return err
	}
	if l.LandingText != "" {
		if err := e.ExpectText(ctx, l.LandingText); err != nil {
			return err
		}
	}
	if l.Stay {
		return nil
	}
	return e.d.Back(ctx)
}

// CountAndVerifyElements asserts locator matches n elements and that every
// one of them contains text1 and text2.
func (e *Epinio) CountAndVerifyElements(ctx context.Context, locator string, n int, text1, text2 string) error {
	e.log.Info("count elements", zap.String("locator", locator), zap.Int("want", n))
	if err := e.d.WaitCount(ctx, browser.Sel(locator).Within(longWait), n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row := browser.Sel(locator).Nth(i)
		for _, text := range []string{text1, text2} {
			if text == "" {
				continue
			}
			if err := e.d.WaitText(ctx, row, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteAll empties one of the resource lists. An already empty list is
// not an error.
func (e *Epinio) DeleteAll(ctx context.Context, resource string) error {
	path, ok := resourceRoutes[resource]
	if !ok {
		return fmt.Errorf("%w: unknown resource %q", ErrInvalidSpec, resource)
	}
	e.log.Info("delete all", zap.String("resource", resource))
	if err := e.d.Visit(ctx, e.route(path)); err != nil {
		return err
	}
	if err := e.waitListLoaded(ctx); err != nil {
		return err
	}
	rows, err := e.d.Count(ctx, browser.Sel(selTableRow))
	if err != nil {
		return err
	}
	if rows == 0 {
		e.log.Info("nothing to delete", zap.String("resource", resource))
		return nil
	}
	if err := e.d.Check(ctx, browser.Sel(selCheckAll).Forced()); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Delete"); err != nil {
		return err
	}
	if err := e.confirmRemoval(ctx, ""); err != nil {
		return err
	}
	if err := e.d.WaitHidden(ctx, browser.Sel(selTableRow).Within(deleteWait)); err != nil {
		return fmt.Errorf("%s still listed after delete: %w", resource, err)
	}
	if resource == ResourceNamespaces && e.cluster != nil {
		if err := e.cluster.WaitCount(ctx, 0, deleteWait); err != nil {
			return fmt.Errorf("namespaces still present in cluster: %w", err)
		}
	}
	return nil
}

// waitListLoaded waits until the open list shows a row or its empty
// marker. Counting rows before that reads a list that is still loading.
func (e *Epinio) waitListLoaded(ctx context.Context) error {
	if err := e.d.WaitVisible(ctx, browser.Sel(selListLoaded).Within(longWait)); err != nil {
		return fmt.Errorf("list did not load: %w", err)
	}
	return nil
}

// confirmRemoval answers the remove prompt, typing name first when the
// prompt asks for it.
func (e *Epinio) confirmRemoval(ctx context.Context, name string) error {
	if err := e.d.WaitVisible(ctx, browser.Sel(selPromptRemove).Within(longWait)); err != nil {
		return err
	}
	if name != "" {
		n, err := e.d.Count(ctx, browser.Sel(selPromptConfirm))
		if err != nil {
			return err
		}
		if n > 0 {
			if err := e.d.Fill(ctx, browser.Sel(selPromptConfirm), name); err != nil {
				return err
			}
		}
	}
	return e.d.Click(ctx, browser.Sel(selPromptDelete))
}

// deleteRow removes one named row from a resource list. With tolerant set
// a missing row is logged and skipped.
func (e *Epinio) deleteRow(ctx context.Context, resource, name string, tolerant bool) error {
	if err := e.d.Visit(ctx, e.route(resourceRoutes[resource])); err != nil {
		return err
	}
	if err := e.waitListLoaded(ctx); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(name)
	if tolerant {
		n, err := e.d.Count(ctx, row)
		if err != nil {
			return err
		}
		if n == 0 {
			e.log.Info("nothing to delete", zap.String("resource", resource), zap.String("name", name))
			return nil
		}
	}
	if err := e.d.Click(ctx, row.Find(selRowCheckbox).Within(longWait)); err != nil {
		return err
	}
	if err := e.ClickButton(ctx, "Delete"); err != nil {
		return err
	}
	if err := e.confirmRemoval(ctx, name); err != nil {
		return err
	}
	if err := e.d.WaitHidden(ctx, row.Within(deleteWait)); err != nil {
		return fmt.Errorf("%s still listed after delete: %w", name, err)
	}
	return nil
}

// rowAction opens the action menu of a named row and picks action.
func (e *Epinio) rowAction(ctx context.Context, resource, name, action string) error {
	if err := e.d.Visit(ctx, e.route(resourceRoutes[resource])); err != nil {
		return err
	}
	row := browser.Sel(selTableRow).Contains(name).Within(longWait)
	if err := e.d.Click(ctx, row.Find(selActionMenu)); err != nil {
		return fmt.Errorf("failed to open actions of %s: %w", name, err)
	}
	return e.d.Click(ctx, browser.Sel(selActionItem).Contains(action))
}

// pick opens a vue-select and chooses the option containing value.
func (e *Epinio) pick(ctx context.Context, sel, value string) error {
	if err := e.d.Click(ctx, browser.Sel(sel).Within(longWait)); err != nil {
		return err
	}
	return e.d.Click(ctx, browser.Sel(selSelectOption).Contains(value).Within(longWait))
}

// saveForm presses the footer button of an edit form.
func (e *Epinio) saveForm(ctx context.Context, label string) error {
	return e.d.Click(ctx, browser.Sel(selFormFooter).Find(selButton).Contains(label).Within(longWait))
}
