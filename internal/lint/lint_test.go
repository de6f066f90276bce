package lint

import "testing"

func TestCheckCleanCode(t *testing.T) {
	code := `-- simple menu
CreateThread(function()
  while true do
    Wait(0)
    print("tick")
  end
end)
`
	if issues := Check(code); len(issues) != 0 {
		t.Errorf("clean code should have no issues, got %v", issues)
	}
}

func TestCheckUnclosedFunction(t *testing.T) {
	code := "function onOpen()\n  print(\"hi\")"
	issues := Check(code)
	if len(issues) != 1 {
		t.Fatalf("want 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Line != 1 {
		t.Errorf("issue line = %d, want 1", issues[0].Line)
	}
	if issues[0].Message != "Unclosed 'function' block (missing 'end' or 'until')" {
		t.Errorf("unexpected message: %q", issues[0].Message)
	}
}

func TestCheckUnclosedBlocks(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind string
	}{
		{"if without end", "if x then\n  y = 1", "if"},
		{"for without end", "for i = 1, 10 do\n  y = i", "for"},
		{"while without end", "while true do\n  y = 1", "while"},
		{"repeat without until", "repeat\n  y = 1", "repeat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Check(tt.code)
			if len(issues) != 1 {
				t.Fatalf("want 1 issue, got %d: %v", len(issues), issues)
			}
			want := "Unclosed '" + tt.kind + "' block (missing 'end' or 'until')"
			if issues[0].Message != want {
				t.Errorf("message = %q, want %q", issues[0].Message, want)
			}
		})
	}
}

func TestCheckRepeatUntil(t *testing.T) {
	code := "repeat\n  y = y + 1\nuntil y > 10"
	if issues := Check(code); len(issues) != 0 {
		t.Errorf("repeat/until should balance, got %v", issues)
	}
}

func TestCheckSingleLineConstruct(t *testing.T) {
	// a construct closed on its own line never enters the stack
	code := "if x then y = 1 end"
	if issues := Check(code); len(issues) != 0 {
		t.Errorf("single-line if should be clean, got %v", issues)
	}
}

func TestCheckPrintWithoutParens(t *testing.T) {
	issues := Check(`print "hello"`)
	if len(issues) != 1 {
		t.Fatalf("want 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Message != "print should be called as a function: print(...)" {
		t.Errorf("unexpected message: %q", issues[0].Message)
	}

	if issues := Check(`print("hello")`); len(issues) != 0 {
		t.Errorf("proper print call flagged: %v", issues)
	}
}

func TestCheckCommentsIgnored(t *testing.T) {
	code := "-- function ignored()\n-- if x then\nprint(\"ok\")"
	if issues := Check(code); len(issues) != 0 {
		t.Errorf("commented-out code should be ignored, got %v", issues)
	}
}

func TestCheckEmptyInput(t *testing.T) {
	if issues := Check(""); len(issues) != 0 {
		t.Errorf("empty input should be clean, got %v", issues)
	}
}
