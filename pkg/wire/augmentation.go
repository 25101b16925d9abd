package wire

import "encoding/json"

// AugmentationEntry is one tag's contribution from a single augmentor.
type AugmentationEntry struct {
	Accounts []string        `json:"accounts"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// AugmentationList is the decoded shape of a RESPONSE body: a map of tag to
// the accounts/data an augmentor contributed for that tag.
type AugmentationList map[string]AugmentationEntry

// ParseAugmentationBody decodes a RESPONSE body per the wire contract: an
// empty string or the literal "null" both decode to an empty list; anything
// else must be a JSON object shaped like AugmentationList.
func ParseAugmentationBody(body []byte) (list AugmentationList, err error) {
	trimmed := string(body)
	if trimmed == "" || trimmed == "null" {
		list = AugmentationList{}
		return
	}

	err = json.Unmarshal(body, &list)
	if err != nil {
		list = nil
		return
	}
	return
}

// Merge folds other into list in place, creating list if nil is returned
// from a zero-value receiver. An (account, tag) pair already present is not
// duplicated; Data for a tag is overwritten only by a non-null value.
func (list AugmentationList) Merge(other AugmentationList) (merged AugmentationList) {
	merged = list
	if merged == nil {
		merged = AugmentationList{}
	}

	for tag, incoming := range other {
		existing, found := merged[tag]
		if !found {
			merged[tag] = incoming
			continue
		}

		existing.Accounts = mergeUnique(existing.Accounts, incoming.Accounts)
		if len(incoming.Data) > 0 && string(incoming.Data) != "null" {
			existing.Data = incoming.Data
		}
		merged[tag] = existing
	}
	return
}

func mergeUnique(existing []string, incoming []string) (out []string) {
	seen := make(map[string]struct{}, len(existing))
	out = append(out, existing...)
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range incoming {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return
}
