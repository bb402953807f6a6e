// Package narrative rewrites combat log lines into flavored prose. A
// describer is advisory: when it fails or times out the caller keeps
// the plain line, resolution never blocks on it.
package narrative

import (
	"context"
	"fmt"

	"github.com/shuffleraid/raid-api/internal/errors"
)

//go:generate mockgen -destination=mock/mock_describer.go -package=narrativemock -source=narrative.go

// DescribeInput carries one resolved action and its plain log line
type DescribeInput struct {
	Line        string
	ActorName   string
	AbilityName string
	TargetName  string
}

// Describer turns a plain combat line into narrated prose
type Describer interface {
	Describe(ctx context.Context, input DescribeInput) (string, error)
}

// Templated is the zero-dependency describer. It embellishes known
// shapes of lines and passes the rest through untouched.
type Templated struct{}

// NewTemplated creates the fallback describer
func NewTemplated() *Templated {
	return &Templated{}
}

var _ Describer = (*Templated)(nil)

// Describe returns a lightly flavored rendition of the line
func (t *Templated) Describe(_ context.Context, input DescribeInput) (string, error) {
	if input.Line == "" {
		return "", errors.InvalidArgument("line cannot be empty")
	}
	if input.ActorName == "" || input.AbilityName == "" {
		return input.Line, nil
	}
	if input.TargetName != "" && input.TargetName != input.ActorName {
		return fmt.Sprintf("%s channels %s toward %s. %s",
			input.ActorName, input.AbilityName, input.TargetName, input.Line), nil
	}
	return fmt.Sprintf("%s unleashes %s. %s", input.ActorName, input.AbilityName, input.Line), nil
}
