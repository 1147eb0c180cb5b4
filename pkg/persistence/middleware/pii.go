package middleware

import (
	"context"
	"regexp"

	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks answers of fields
// whose IDs match the patterns before they reach the store. The
// in-memory state the engine evaluates keeps the real values.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	cloned := state.Clone()
	maskAnswers(cloned.Answers, m.patterns)
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskAnswers(answers domain.Answers, patterns []*regexp.Regexp) {
	for fieldID, v := range answers {
		for _, p := range patterns {
			if !p.MatchString(fieldID) {
				continue
			}
			if v.IsList {
				masked := make([]string, len(v.List))
				for i := range masked {
					masked[i] = "***"
				}
				answers.Set(fieldID, domain.ListValue(masked...))
			} else {
				answers.Set(fieldID, domain.ScalarValue("***"))
			}
			break
		}
	}
}
