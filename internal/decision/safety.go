package decision

import (
	"strconv"
	"strings"
)

// fallbackToken is the literal last-resort response for an unrecognized
// decision kind offering no candidates at all. The server treats an
// unparseable value the same as index zero, which is the least damaging
// guess available.
const fallbackToken = "0"

var surrenderWords = []string{"concede", "forfeit", "surrender"}

func mentionsSurrender(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range surrenderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// EmergencyResponse computes a guaranteed structurally valid response from
// the raw decision parameters alone, with no board context. It is total:
// every legal combination of kind, bounds, candidate lists and must-choose
// flag maps to a defined value, including an unrecognized kind with no
// candidates and must-choose asserted.
func EmergencyResponse(req *Request) string {
	switch req.Kind {
	case KindInteger:
		// The minimum is the conservative, resource-preserving answer.
		return strconv.Itoa(req.Min)

	case KindMultipleChoice:
		// First option, except prompts offering to give up the game: those
		// route to the second option so a stray confirmation never concedes.
		if mentionsSurrender(req.Text) && len(req.Options) > 1 {
			return "1"
		}
		return "0"

	case KindCardSelection, KindArbitraryCards:
		if ids := req.SelectableCardIDs(); len(ids) > 0 {
			return ids[0]
		}
		if len(req.CardIDs) > 0 {
			return req.CardIDs[0]
		}
		return ""

	case KindActionChoice, KindCardActionChoice:
		if len(req.ActionIDs) > 0 {
			return req.ActionIDs[0]
		}
		return ""

	default:
		if len(req.ActionIDs) > 0 {
			return req.ActionIDs[0]
		}
		if len(req.CardIDs) > 0 {
			return req.CardIDs[0]
		}
		if req.PassAllowed() {
			return ""
		}
		return fallbackToken
	}
}

// offeredValues returns the closed set of single values the server will
// accept for the request, nil when the kind is unconstrained by a list.
func offeredValues(req *Request) map[string]bool {
	set := make(map[string]bool)
	switch req.Kind {
	case KindMultipleChoice:
		for i := range req.Options {
			set[strconv.Itoa(i)] = true
		}
	case KindActionChoice, KindCardActionChoice:
		for _, id := range req.ActionIDs {
			set[id] = true
		}
	case KindCardSelection, KindArbitraryCards:
		for _, opt := range req.Options {
			if opt.CardID != "" && opt.Selectable {
				set[opt.CardID] = true
			}
		}
		if len(set) == 0 {
			for _, id := range req.CardIDs {
				set[id] = true
			}
		}
	default:
		return nil
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// multiSelect reports whether responses for the request are comma-joined
// lists rather than single values.
func multiSelect(req *Request) bool {
	switch req.Kind {
	case KindArbitraryCards:
		return true
	case KindCardSelection:
		return req.Max > 1
	default:
		return false
	}
}

// FinalCheck re-validates a chosen value against the request's structural
// constraints and corrects it in place when it violates them. It runs after
// every resolution path, so a defect anywhere upstream degrades to a legal
// value instead of a stalled game. The returned bool reports whether a
// correction was applied.
func FinalCheck(req *Request, value string) (string, bool) {
	switch req.Kind {
	case KindInteger:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return strconv.Itoa(req.Min), true
		}
		if n < req.Min {
			return strconv.Itoa(req.Min), true
		}
		if req.Max >= req.Min && n > req.Max {
			return strconv.Itoa(req.Max), true
		}
		return value, false
	}

	offered := offeredValues(req)

	if multiSelect(req) {
		return finalCheckMulti(req, value, offered)
	}

	if value == "" {
		if req.PassAllowed() {
			return value, false
		}
		return EmergencyResponse(req), true
	}

	if offered != nil && !offered[value] {
		return EmergencyResponse(req), true
	}
	return value, false
}

// finalCheckMulti validates a comma-joined multi-select value: every token
// must come from the offered set, duplicates are dropped, and the token
// count is forced into [min, max] as far as the offered set allows.
func finalCheckMulti(req *Request, value string, offered map[string]bool) (string, bool) {
	var tokens []string
	if value != "" {
		tokens = strings.Split(value, ",")
	}

	kept := make([]string, 0, len(tokens))
	seen := make(map[string]bool)
	corrected := false
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] || (offered != nil && !offered[tok]) {
			corrected = true
			continue
		}
		seen[tok] = true
		kept = append(kept, tok)
	}

	min := req.Min
	if min == 0 && req.NoPass {
		min = 1
	}

	// Top up from the offered set when below the minimum.
	if len(kept) < min && offered != nil {
		for _, opt := range req.Options {
			if len(kept) >= min {
				break
			}
			id := opt.CardID
			if id != "" && offered[id] && !seen[id] {
				seen[id] = true
				kept = append(kept, id)
				corrected = true
			}
		}
	}

	if req.Max >= 1 && len(kept) > req.Max {
		kept = kept[:req.Max]
		corrected = true
	}

	if len(kept) == 0 && !req.PassAllowed() && offered == nil {
		return fallbackToken, true
	}
	return strings.Join(kept, ","), corrected
}
