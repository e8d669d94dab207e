package decision

import (
	"strconv"

	"github.com/swccgarena/rando/internal/gemp"
)

// Kind is the server-declared category of a pending choice.
type Kind int

const (
	KindUnknown Kind = iota
	KindInteger
	KindMultipleChoice
	KindCardSelection
	KindActionChoice
	KindCardActionChoice
	KindArbitraryCards
)

var kindNames = map[Kind]string{
	KindUnknown:          "UNKNOWN",
	KindInteger:          "INTEGER",
	KindMultipleChoice:   "MULTIPLE_CHOICE",
	KindCardSelection:    "CARD_SELECTION",
	KindActionChoice:     "ACTION_CHOICE",
	KindCardActionChoice: "CARD_ACTION_CHOICE",
	KindArbitraryCards:   "ARBITRARY_CARDS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseKind maps a wire decision type to a Kind. Unrecognized types map to
// KindUnknown, which the resolution ladder must still answer.
func ParseKind(name string) Kind {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind
		}
	}
	return KindUnknown
}

// Option is one candidate choice of a decision, assembled positionally from
// the request's parameter list.
type Option struct {
	ActionID    string
	ActionText  string
	CardID      string
	BlueprintID string
	Selectable  bool
}

// Request is one decision request as received from the server, ephemeral to
// a single decision cycle.
type Request struct {
	ID   string
	Kind Kind
	Text string

	Options   []Option
	ActionIDs []string
	CardIDs   []string

	Min          int
	Max          int
	DefaultValue string
	NoPass       bool
	NoLongDelay  bool
}

// ParseRequest builds a Request from a raw decision event. Parameters arrive
// as an ordered name/value list; list-valued names (actionId, actionText,
// cardId, blueprintId, selectable) align positionally into options, scalar
// names (min, max, defaultValue, noPass, noLongDelay) apply to the whole
// request. Malformed scalar values fall back to zero values rather than
// failing the parse.
func ParseRequest(raw *gemp.RawEvent) *Request {
	req := &Request{
		ID:   raw.ID,
		Kind: ParseKind(raw.DecisionType),
		Text: raw.Text,
	}

	var (
		actionIDs    []string
		actionTexts  []string
		cardIDs      []string
		blueprintIDs []string
		selectable   []bool
	)

	for _, p := range raw.Params {
		switch p.Name {
		case "actionId":
			actionIDs = append(actionIDs, p.Value)
		case "actionText":
			actionTexts = append(actionTexts, p.Value)
		case "cardId":
			cardIDs = append(cardIDs, p.Value)
		case "blueprintId":
			blueprintIDs = append(blueprintIDs, p.Value)
		case "selectable":
			selectable = append(selectable, p.Value == "true")
		case "min":
			if n, err := strconv.Atoi(p.Value); err == nil {
				req.Min = n
			}
		case "max":
			if n, err := strconv.Atoi(p.Value); err == nil {
				req.Max = n
			}
		case "defaultValue":
			req.DefaultValue = p.Value
		case "noPass":
			req.NoPass = p.Value == "true"
		case "noLongDelay":
			req.NoLongDelay = p.Value == "true"
		}
	}

	req.ActionIDs = actionIDs
	req.CardIDs = cardIDs

	count := len(actionIDs)
	if len(cardIDs) > count {
		count = len(cardIDs)
	}
	if len(actionTexts) > count {
		count = len(actionTexts)
	}
	for i := 0; i < count; i++ {
		opt := Option{Selectable: true}
		if i < len(actionIDs) {
			opt.ActionID = actionIDs[i]
		}
		if i < len(actionTexts) {
			opt.ActionText = actionTexts[i]
		}
		if i < len(cardIDs) {
			opt.CardID = cardIDs[i]
		}
		if i < len(blueprintIDs) {
			opt.BlueprintID = blueprintIDs[i]
		}
		if i < len(selectable) {
			opt.Selectable = selectable[i]
		}
		req.Options = append(req.Options, opt)
	}

	return req
}

// SelectableCardIDs returns the card ids that may legally be chosen.
func (r *Request) SelectableCardIDs() []string {
	var ids []string
	for _, opt := range r.Options {
		if opt.CardID != "" && opt.Selectable {
			ids = append(ids, opt.CardID)
		}
	}
	return ids
}

// PassAllowed reports whether an empty response is a legal answer.
func (r *Request) PassAllowed() bool {
	return !r.NoPass
}
