package fields

import (
	"testing"
)

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("  चर्चा \t सुरू\n झाली  ")
	if got != "चर्चा सुरू झाली" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_RepairsKnownCorruption(t *testing.T) {
	if got := Clean("Dev     vices यादी"); got != "Devices यादी" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_IntraWordGap(t *testing.T) {
	// 3+ spaces inside a word close up; single spaces between words survive.
	if got := Clean("गा   ायनाने सुरुवात"); got != "गाायनाने सुरुवात" {
		t.Errorf("Clean = %q", got)
	}
	if got := Clean("दोन शब्द"); got != "दोन शब्द" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_Empty(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("Clean = %q", got)
	}
}

func TestExtract_Date(t *testing.T) {
	f := Extract("सभागृहाची बैठक २१ मार्च, २०२२ रोजी झाली")
	if f.Date != "२१ मार्च, २०२२" {
		t.Errorf("Date = %q", f.Date)
	}
}

func TestExtract_QuestionNumbers(t *testing.T) {
	f := Extract("प्रश्न क्रमांक १२३ आणि क्रमांक ४५ यावर चर्चा")
	if len(f.QuestionNumbers) != 2 {
		t.Fatalf("QuestionNumbers = %v", f.QuestionNumbers)
	}
	if f.QuestionNumbers[0] != "१२३" || f.QuestionNumbers[1] != "४५" {
		t.Errorf("QuestionNumbers = %v", f.QuestionNumbers)
	}
}

func TestExtract_ParticipantRoles(t *testing.T) {
	text := "श्री. अजित पवार यांनी प्रश्न विचारला आहे\n" +
		"श्री. देवेंद्र फडणवीस यांनी उत्तर दिले त्यावेळी\n" +
		"श्रीमती. सुप्रिया सुळे उपस्थित होत्या"

	f := Extract(text)

	if len(f.Participants.Askers) != 1 {
		t.Fatalf("Askers = %v", f.Participants.Askers)
	}
	if len(f.Participants.Answerers) != 1 {
		t.Fatalf("Answerers = %v", f.Participants.Answerers)
	}
	if len(f.Participants.Members) != 1 {
		t.Fatalf("Members = %v", f.Participants.Members)
	}
}

func TestParticipantsAll_Union(t *testing.T) {
	p := Participants{
		Askers:    []string{"श्री. अ"},
		Answerers: []string{"श्री. ब"},
		Members:   []string{"श्री. अ", "श्री. क"},
	}
	all := p.All()
	if len(all) != 3 {
		t.Errorf("All = %v", all)
	}
}

func TestValidateTopic(t *testing.T) {
	if got := ValidateTopic("  "); got != "Unknown Topic" {
		t.Errorf("ValidateTopic = %q", got)
	}
	if got := ValidateTopic(" विषय A "); got != "विषय A" {
		t.Errorf("ValidateTopic = %q", got)
	}
}

func TestDocumentName(t *testing.T) {
	if got := DocumentName("", "विषय A"); got != "विषय A_Document" {
		t.Errorf("DocumentName = %q", got)
	}
	if got := DocumentName("दस्तऐवज", "विषय A"); got != "दस्तऐवज" {
		t.Errorf("DocumentName = %q", got)
	}
}
