package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bft-labs/herald/internal/domain"
)

type setLedger map[string]bool

func (s setLedger) Contains(phone string) bool { return s[phone] }

func makeRecipients(phones ...string) []domain.Recipient {
	out := make([]domain.Recipient, len(phones))
	for i, p := range phones {
		out[i] = domain.Recipient{Phone: p, MessageValue: fmt.Sprintf("%06d", i), Fields: map[string]string{}}
	}
	return out
}

func TestPrepare_RoundRobin(t *testing.T) {
	profile := domain.Profile{Templates: []string{"t1", "t2"}}
	items, err := NewFeed(nil).Prepare(makeRecipients("1", "2", "3", "4", "5"), profile, setLedger{}, false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	want := []string{"t1", "t2", "t1", "t2", "t1"}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i, it := range items {
		if it.Template != want[i] {
			t.Errorf("items[%d].Template = %s, want %s", i, it.Template, want[i])
		}
		if it.Recipient.Phone != fmt.Sprint(i+1) {
			t.Errorf("items[%d].Phone = %s, want input order", i, it.Recipient.Phone)
		}
	}
}

func TestPrepare_FiltersLedger(t *testing.T) {
	profile := domain.Profile{Templates: []string{"t1"}}
	ledger := setLedger{"5511999990000": true}

	items, err := NewFeed(nil).Prepare(makeRecipients("5511111110000", " 5511999990000 ", "5511222220000"), profile, ledger, false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	for _, it := range items {
		if domain.NormalizePhone(it.Recipient.Phone) == "5511999990000" {
			t.Errorf("ledger recipient was not filtered")
		}
	}
}

func TestPrepare_ShuffleAssignsAfterPermutation(t *testing.T) {
	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	profile := domain.Profile{Templates: []string{"a", "b", "c"}}

	items, err := NewFeed(reverse).Prepare(makeRecipients("1", "2", "3", "4"), profile, nil, true)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	wantPhones := []string{"4", "3", "2", "1"}
	wantTemplates := []string{"a", "b", "c", "a"}
	for i, it := range items {
		if it.Recipient.Phone != wantPhones[i] || it.Template != wantTemplates[i] {
			t.Errorf("items[%d] = (%s,%s), want (%s,%s)", i, it.Recipient.Phone, it.Template, wantPhones[i], wantTemplates[i])
		}
	}
}

func TestPrepare_ShuffleIsPermutation(t *testing.T) {
	phones := make([]string, 50)
	for i := range phones {
		phones[i] = fmt.Sprint(i)
	}
	items, err := NewFeed(nil).Prepare(makeRecipients(phones...), domain.Profile{Templates: []string{"t"}}, nil, true)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	seen := map[string]bool{}
	for _, it := range items {
		seen[it.Recipient.Phone] = true
	}
	if len(seen) != len(phones) {
		t.Errorf("shuffle lost recipients: %d of %d", len(seen), len(phones))
	}
}

func TestPrepare_NoTemplates(t *testing.T) {
	_, err := NewFeed(nil).Prepare(makeRecipients("1"), domain.Profile{}, nil, false)
	if !errors.Is(err, domain.ErrNoTemplates) {
		t.Fatalf("err = %v, want ErrNoTemplates", err)
	}
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
