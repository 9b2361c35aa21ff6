package gemchat

import "slices"

// Turn is one message in a conversation, tagged by speaker role.
// Turns are values; once appended to a Transcript they are never modified.
type Turn struct {
	Role Role
	Text string
}

// UserTurn returns a Turn spoken by the user.
func UserTurn(text string) Turn { return Turn{Role: RoleUser, Text: text} }

// ModelTurn returns a Turn spoken by the model.
func ModelTurn(text string) Turn { return Turn{Role: RoleModel, Text: text} }

// Transcript is the ordered history of turns sent as context with every
// request. Insertion order is significant.
type Transcript []Turn

// Append returns a new Transcript holding t followed by turns. The result
// never shares a backing array with t, so a transcript captured for one
// request is unaffected by later appends.
func (t Transcript) Append(turns ...Turn) Transcript {
	return slices.Concat(t, turns)
}

// DefaultSeed returns the example exchange a new chat starts with.
func DefaultSeed() Transcript {
	return Transcript{
		UserTurn("Hello, how are you today?"),
		ModelTurn("I'm doing well, thank you for asking. How can I assist you?"),
	}
}
