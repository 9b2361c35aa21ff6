package mock

import (
	"context"

	"github.com/fwojciec/gemchat"
)

// Replies returns a Completer that answers successive calls with the given
// replies in order and records every request it receives into *requests.
// Calls beyond len(replies) fail with gemchat.ErrTransport.
func Replies(requests *[]gemchat.Request, replies ...string) *Completer {
	i := 0
	return &Completer{
		CompleteFn: func(_ context.Context, req gemchat.Request) (string, error) {
			if requests != nil {
				*requests = append(*requests, req)
			}
			if i >= len(replies) {
				return "", gemchat.ErrTransport
			}
			r := replies[i]
			i++
			return r, nil
		},
	}
}
