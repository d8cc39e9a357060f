package ui

import "testing"

func testOptions() []option {
	return []option{
		{id: 7, label: "Detergente", hint: "Casa"},
		{id: 9, label: "Arroz", hint: "Mercearia"},
		{id: 11, label: "Feijão", hint: "Mercearia"},
	}
}

func TestPicker_FiltersByLabelAndHint(t *testing.T) {
	p := &picker{options: testOptions()}

	if got := len(p.filtered("")); got != 3 {
		t.Fatalf("blank filter = %d options, want 3", got)
	}
	if got := len(p.filtered("merc")); got != 2 {
		t.Fatalf("hint filter = %d options, want 2", got)
	}
	o, ok := p.chosen("feij")
	if !ok || o.id != 11 {
		t.Fatalf("chosen = %+v, %v; want Feijão", o, ok)
	}
	if _, ok := p.chosen("leite"); ok {
		t.Fatal("expected no choice for an unmatched filter")
	}
}

func TestPicker_MoveClamps(t *testing.T) {
	p := &picker{options: testOptions()}
	p.move(-1, "")
	if p.selected != 0 {
		t.Fatalf("selected = %d, want 0", p.selected)
	}
	p.move(5, "")
	if p.selected != 2 {
		t.Fatalf("selected = %d, want 2", p.selected)
	}
	p.move(1, "merc")
	if p.selected != 1 {
		t.Fatalf("selected = %d, want 1", p.selected)
	}
}

func TestFormModal_SetOptionsKeepsChoice(t *testing.T) {
	f := newFormModal("t", nil).addPicker("Produto", "", testOptions(), 9)
	_, picks := f.values()
	if picks[0] != 9 {
		t.Fatalf("preselected = %d, want 9", picks[0])
	}

	f.setOptions(0, []option{{id: 3, label: "Sal"}, {id: 9, label: "Arroz"}})
	_, picks = f.values()
	if picks[0] != 9 {
		t.Fatalf("after setOptions = %d, want 9", picks[0])
	}

	f.setOptions(0, []option{{id: 3, label: "Sal"}})
	_, picks = f.values()
	if picks[0] != 3 {
		t.Fatalf("after removing the choice = %d, want 3", picks[0])
	}
}
