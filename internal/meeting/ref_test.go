package meeting

import "testing"

func TestRefValidate(t *testing.T) {
	ref := Ref{Year: 2025, Month: 1, Day: 8, Committee: "House Chambers", Code: "house", ScheduledTime: "0900AM"}
	if err := ref.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := ref
	bad.Month = 13
	if err := bad.Validate(); err == nil {
		t.Fatal("expected month validation error")
	}

	bad = ref
	bad.Committee = " "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected committee validation error")
	}
}

func TestRefLabelAndTokens(t *testing.T) {
	ref := Ref{Year: 2025, Month: 1, Day: 8, Committee: "House Chambers", Code: "house", ScheduledTime: "0900AM"}
	if got := ref.Label(); got != "250108_house_0900AM" {
		t.Fatalf("Label = %q", got)
	}
	if got := ref.DateCode(); got != "250108" {
		t.Fatalf("DateCode = %q", got)
	}

	url := ref.ExpandTemplate("https://archive.example/media/{yy}{mm}{dd}_{code}_{time}-Meeting.mp4")
	want := "https://archive.example/media/250108_house_0900AM-Meeting.mp4"
	if url != want {
		t.Fatalf("ExpandTemplate = %q, want %q", url, want)
	}
}

func TestRefLabelWithoutTime(t *testing.T) {
	ref := Ref{Year: 2024, Month: 12, Day: 3, Committee: "Senate Finance", Code: "sfin"}
	if got := ref.Label(); got != "241203_sfin" {
		t.Fatalf("Label = %q", got)
	}
}
