package gis

// Mode selects the direction of a bulk membership change.
type Mode int

const (
	ModeAdd Mode = iota
	ModeRemove
)

func (m Mode) String() string {
	if m == ModeAdd {
		return "add"
	}
	return "remove"
}

// Past is the past-tense verb for report text ("added"/"removed").
func (m Mode) Past() string {
	if m == ModeAdd {
		return "added"
	}
	return "removed"
}

// Gerund is the progressive verb form for report text
// ("adding"/"removing").
func (m Mode) Gerund() string {
	if m == ModeAdd {
		return "adding"
	}
	return "removing"
}

// Preposition is the report-text preposition ("to"/"from").
func (m Mode) Preposition() string {
	if m == ModeAdd {
		return "to"
	}
	return "from"
}

// endpoint is the bulk-membership API operation for this mode.
func (m Mode) endpoint() string {
	if m == ModeAdd {
		return "addUsers"
	}
	return "removeUsers"
}

// notAppliedKey is the response field listing usernames the backend
// declined to change.
func (m Mode) notAppliedKey() string {
	if m == ModeAdd {
		return "notAdded"
	}
	return "notRemoved"
}
