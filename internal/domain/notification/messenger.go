package notification

import (
	"context"
	"errors"
)

// ErrUnregisteredToken means the push provider reports the token as
// permanently invalid. The token is a cleanup candidate and retrying the
// send is pointless.
var ErrUnregisteredToken = errors.New("push token is unregistered")

// Messenger is the push provider boundary. SendProbe delivers a silent
// data-only message used solely to learn whether a token is still alive.
type Messenger interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
	SendProbe(ctx context.Context, token string) error
}
