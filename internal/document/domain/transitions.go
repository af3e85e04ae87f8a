package domain

// statusesByType is the closed status set of each document type.
var statusesByType = map[Type][]Status{
	TypeQuote:      {StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired, StatusConverted},
	TypeOrder:      {StatusDraft, StatusConfirmed, StatusPartial, StatusCompleted, StatusCancelled},
	TypeDelivery:   {StatusReady, StatusShipped, StatusDelivered},
	TypeInvoice:    {StatusDraft, StatusPosted, StatusCancelled},
	TypeCreditNote: {StatusDraft, StatusPosted, StatusCancelled},
}

// transitions lists the within-type moves UpdateStatus may perform.
// Posting and conversion have their own entry points and are absent here.
var transitions = map[Type]map[Status][]Status{
	TypeQuote: {
		StatusDraft: {StatusSent},
		StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
	},
	TypeOrder: {
		StatusDraft:     {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusPartial, StatusCompleted, StatusCancelled},
		StatusPartial:   {StatusCompleted},
	},
	TypeDelivery: {
		StatusReady:   {StatusShipped},
		StatusShipped: {StatusDelivered},
	},
	TypeInvoice: {
		StatusDraft: {StatusCancelled},
	},
	TypeCreditNote: {
		StatusDraft: {StatusCancelled},
	},
}

// convertGuards lists the source statuses each type may be converted from.
var convertGuards = map[Type][]Status{
	TypeQuote:    {StatusSent, StatusAccepted},
	TypeOrder:    {StatusConfirmed, StatusPartial, StatusCompleted},
	TypeDelivery: {StatusReady, StatusShipped, StatusDelivered},
	TypeInvoice:  {StatusPosted},
}

func (t Type) Valid() bool {
	_, ok := statusesByType[t]
	return ok
}

func ValidStatus(t Type, s Status) bool {
	for _, candidate := range statusesByType[t] {
		if candidate == s {
			return true
		}
	}
	return false
}

// InitialStatus is the status a freshly created document starts in.
func InitialStatus(t Type) Status {
	if t == TypeDelivery {
		return StatusReady
	}
	return StatusDraft
}

func CanTransition(t Type, from, to Status) bool {
	for _, candidate := range transitions[t][from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// NextType returns what the document converts into. The chain is one-way
// and ends at the credit note.
func NextType(t Type) (Type, bool) {
	switch t {
	case TypeQuote:
		return TypeOrder, true
	case TypeOrder:
		return TypeDelivery, true
	case TypeDelivery:
		return TypeInvoice, true
	case TypeInvoice:
		return TypeCreditNote, true
	default:
		return "", false
	}
}

// ConvertAllowed reports whether a document in the given status may be
// used as a conversion source.
func ConvertAllowed(t Type, s Status) bool {
	for _, candidate := range convertGuards[t] {
		if candidate == s {
			return true
		}
	}
	return false
}
