package syntax

import (
	"errors"

	"go.uber.org/multierr"
)

// SkipChildren may be returned by a visitor to leave a node's subtree out of
// the walk. It is never reported.
var SkipChildren = errors.New("skip children")

// Walk visits root and its named descendants in pre-order. A visitor error
// matching one of catch (by errors.Is) is collected into caught and the walk
// goes on, children included. Any other error stops the walk and is returned
// as err.
func Walk(root *Node, visit func(*Node) error, catch ...error) (caught error, err error) {
	err = walk(root, visit, catch, &caught)
	return caught, err
}

func walk(n *Node, visit func(*Node) error, catch []error, caught *error) error {
	if n == nil {
		return nil
	}

	if err := visit(n); err != nil {
		switch {
		case errors.Is(err, SkipChildren):
			return nil
		case matchesAny(err, catch):
			*caught = multierr.Append(*caught, err)
		default:
			return err
		}
	}

	for _, child := range n.Children() {
		if err := walk(child, visit, catch, caught); err != nil {
			return err
		}
	}
	return nil
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
