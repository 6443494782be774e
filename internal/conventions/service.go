package conventions

import (
	"fmt"
	"strconv"

	"github.com/zjrosen/roster/internal/loader"
)

// Service is a business-logic artifact. Services are always published.
type Service struct {
	artifact
	transactional bool
}

// NewService builds the service facade for t.
func NewService(t *loader.Type) (*Service, error) {
	s := &Service{artifact: newArtifact(t, SuffixService), transactional: true}
	if v, ok := t.Directive(DirectiveTransactional); ok {
		tx, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: transactional %q on %s", ErrInvalidValue, v, t.QualifiedName())
		}
		s.transactional = tx
	}
	return s, nil
}

// Transactional reports whether service methods run in a transaction.
func (s *Service) Transactional() bool { return s.transactional }
