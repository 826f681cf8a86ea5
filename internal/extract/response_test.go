package extract

import "testing"

func TestCleanResponse_CodeFence(t *testing.T) {
	got := CleanResponse("```json\n[{\"name\":\"x\"}]\n```")
	if got != `[{"name":"x"}]` {
		t.Errorf("CleanResponse = %q", got)
	}
}

func TestCleanResponse_ThinkPreamble(t *testing.T) {
	got := CleanResponse("<think>some reasoning</think>\n[]")
	if got != "[]" {
		t.Errorf("CleanResponse = %q", got)
	}
}

func TestCleanResponse_Plain(t *testing.T) {
	if got := CleanResponse(`{"a":1}`); got != `{"a":1}` {
		t.Errorf("CleanResponse = %q", got)
	}
}

func TestExtractArray(t *testing.T) {
	sub, ok := ExtractArray(`Here is the result: [{"name":"x"}] hope it helps`)
	if !ok || sub != `[{"name":"x"}]` {
		t.Errorf("ExtractArray = %q, %v", sub, ok)
	}
}

func TestExtractArray_None(t *testing.T) {
	if _, ok := ExtractArray("no json here"); ok {
		t.Error("expected no match")
	}
}

func TestExtractObject(t *testing.T) {
	sub, ok := ExtractObject(`result {"date":"x"} end`)
	if !ok || sub != `{"date":"x"}` {
		t.Errorf("ExtractObject = %q, %v", sub, ok)
	}
}
