package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextType(t *testing.T) {
	chain := []Type{TypeQuote, TypeOrder, TypeDelivery, TypeInvoice, TypeCreditNote}
	for i := 0; i < len(chain)-1; i++ {
		next, ok := NextType(chain[i])
		assert.True(t, ok)
		assert.Equal(t, chain[i+1], next)
	}
	_, ok := NextType(TypeCreditNote)
	assert.False(t, ok, "credit note ends the chain")
}

func TestConvertAllowed(t *testing.T) {
	cases := []struct {
		typ     Type
		status  Status
		allowed bool
	}{
		{TypeQuote, StatusDraft, false},
		{TypeQuote, StatusSent, true},
		{TypeQuote, StatusAccepted, true},
		{TypeQuote, StatusRejected, false},
		{TypeQuote, StatusExpired, false},
		{TypeQuote, StatusConverted, false},

		{TypeOrder, StatusDraft, false},
		{TypeOrder, StatusConfirmed, true},
		{TypeOrder, StatusPartial, true},
		{TypeOrder, StatusCompleted, true},
		{TypeOrder, StatusCancelled, false},

		{TypeDelivery, StatusReady, true},
		{TypeDelivery, StatusShipped, true},
		{TypeDelivery, StatusDelivered, true},

		{TypeInvoice, StatusDraft, false},
		{TypeInvoice, StatusPosted, true},
		{TypeInvoice, StatusCancelled, false},

		{TypeCreditNote, StatusDraft, false},
		{TypeCreditNote, StatusPosted, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, ConvertAllowed(tc.typ, tc.status),
			"%s in %s", tc.typ, tc.status)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(TypeQuote, StatusDraft, StatusSent))
	assert.True(t, CanTransition(TypeQuote, StatusSent, StatusAccepted))
	assert.True(t, CanTransition(TypeQuote, StatusSent, StatusRejected))
	assert.True(t, CanTransition(TypeQuote, StatusSent, StatusExpired))
	assert.False(t, CanTransition(TypeQuote, StatusDraft, StatusAccepted))
	assert.False(t, CanTransition(TypeQuote, StatusAccepted, StatusDraft))
	assert.False(t, CanTransition(TypeQuote, StatusSent, StatusConverted), "conversion has its own entry point")

	assert.True(t, CanTransition(TypeOrder, StatusDraft, StatusConfirmed))
	assert.True(t, CanTransition(TypeOrder, StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(TypeOrder, StatusPartial, StatusCompleted))
	assert.False(t, CanTransition(TypeOrder, StatusCompleted, StatusConfirmed))

	assert.True(t, CanTransition(TypeDelivery, StatusReady, StatusShipped))
	assert.True(t, CanTransition(TypeDelivery, StatusShipped, StatusDelivered))
	assert.False(t, CanTransition(TypeDelivery, StatusReady, StatusDelivered))

	assert.True(t, CanTransition(TypeInvoice, StatusDraft, StatusCancelled))
	assert.False(t, CanTransition(TypeInvoice, StatusDraft, StatusPosted), "posting has its own entry point")
	assert.False(t, CanTransition(TypeInvoice, StatusPosted, StatusCancelled))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusDraft, InitialStatus(TypeQuote))
	assert.Equal(t, StatusDraft, InitialStatus(TypeOrder))
	assert.Equal(t, StatusReady, InitialStatus(TypeDelivery))
	assert.Equal(t, StatusDraft, InitialStatus(TypeInvoice))
	assert.Equal(t, StatusDraft, InitialStatus(TypeCreditNote))
}
