package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/automa-saga/automa"
	"github.com/stretchr/testify/require"
)

func TestSetDefault(t *testing.T) {
	orig := *As()
	defer SetDefault(&orig)

	var started []string
	SetDefault(&Handler{
		StepStart: func(ctx context.Context, stp automa.Step, msg string, args ...interface{}) {
			started = append(started, fmt.Sprintf(msg, args...))
		},
	})

	As().StepStart(context.Background(), nil, "ensuring bundle %s", "v10.19.2")
	require.Equal(t, []string{"ensuring bundle v10.19.2"}, started, "Custom StepStart callback should receive the event")

	// Nil fields keep the existing callbacks
	require.NotNil(t, As().StepCompletion, "StepCompletion should survive a partial override")
	require.NotNil(t, As().StepFailure, "StepFailure should survive a partial override")
}
