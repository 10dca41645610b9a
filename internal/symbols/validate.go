package symbols

import (
	"errors"
	"fmt"
)

// Validate walks the scope arena checking structural invariants. Returns nil
// if everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.Scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scope := &t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Parent.IsValid() {
			if int(scope.Parent) >= len(t.Scopes.data) || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
				continue
			}
			found := false
			for _, child := range t.Scopes.data[scope.Parent].Children {
				if child == scopeID {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, scope.Parent))
			}
		}
		for _, child := range scope.Children {
			if int(child) >= len(t.Scopes.data) || child == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid child %d", scopeID, child))
				continue
			}
			if t.Scopes.data[child].Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scopeID, child))
			}
		}
		if len(scope.Names) != len(scope.Bindings) {
			errs = append(errs, fmt.Errorf("scope %d: %d ordered names for %d bindings", scopeID, len(scope.Names), len(scope.Bindings)))
		}
		for name, b := range scope.Bindings {
			switch b.Kind {
			case BindValue:
				if b.Value == nil {
					errs = append(errs, fmt.Errorf("scope %d: %q bound to nil symbol", scopeID, name))
				}
			case BindRedirect:
				if _, _, ok := t.Resolve(scopeID, name); !ok {
					errs = append(errs, fmt.Errorf("scope %d: dangling redirect %q -> %q", scopeID, name, b.Target))
				}
			default:
				errs = append(errs, fmt.Errorf("scope %d: %q has invalid binding kind %d", scopeID, name, b.Kind))
			}
		}
	}

	return errors.Join(errs...)
}
