package protocol

import (
	"errors"
	"testing"
)

func TestDecodeAction(t *testing.T) {
	t.Parallel()

	typ, action, err := DecodeAction([]byte(`{"type":"set_bid","value":4}`))
	if err != nil {
		t.Fatalf("DecodeAction: %v", err)
	}
	if typ != TypeSetBid {
		t.Errorf("type = %q", typ)
	}
	bid, ok := action.(*SetBid)
	if !ok {
		t.Fatalf("action = %T", action)
	}
	if bid.Value != 4 {
		t.Errorf("value = %d", bid.Value)
	}

	typ, action, err = DecodeAction([]byte(`{"type":"call_renege","accused":2,"hand":1,"trick_index":3,"play_index":0}`))
	if err != nil {
		t.Fatalf("DecodeAction: %v", err)
	}
	call := action.(*CallRenege)
	if typ != TypeCallRenege || call.Accused != 2 || call.TrickIndex != 3 {
		t.Errorf("decoded %q %+v", typ, call)
	}
}

func TestDecodeActionRejectsUnknownType(t *testing.T) {
	t.Parallel()
	_, _, err := DecodeAction([]byte(`{"type":"raise","amount":50}`))
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeActionRejectsMalformedFrame(t *testing.T) {
	t.Parallel()
	if _, _, err := DecodeAction([]byte(`{`)); err == nil {
		t.Error("malformed frame accepted")
	}
	if _, _, err := DecodeAction([]byte(`{"type":"play_card","card":7}`)); err == nil {
		t.Error("mistyped field accepted")
	}
}

func TestEncodeActionRoundTrip(t *testing.T) {
	t.Parallel()
	data, err := EncodeAction(TypePlayCard, &PlayCard{Card: "JokerColor"})
	if err != nil {
		t.Fatalf("EncodeAction: %v", err)
	}
	typ, action, err := DecodeAction(data)
	if err != nil {
		t.Fatalf("DecodeAction: %v", err)
	}
	if typ != TypePlayCard || action.(*PlayCard).Card != "JokerColor" {
		t.Errorf("round trip: %q %+v", typ, action)
	}
}
