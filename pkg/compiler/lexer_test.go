package compiler

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Type: EOF}},
		},
		{
			name:  "Assignment",
			input: "result = a + b",
			expected: []Token{
				{IDENTIFIER, "result"},
				{EQUALS, "="},
				{IDENTIFIER, "a"},
				{OPERATOR, "+"},
				{IDENTIFIER, "b"},
				{Type: EOF},
			},
		},
		{
			name:  "All Operators And Punctuation",
			input: "+-*/%(),=",
			expected: []Token{
				{OPERATOR, "+"},
				{OPERATOR, "-"},
				{OPERATOR, "*"},
				{OPERATOR, "/"},
				{OPERATOR, "%"},
				{LPAREN, "("},
				{RPAREN, ")"},
				{COMMA, ","},
				{EQUALS, "="},
				{Type: EOF},
			},
		},
		{
			name:  "Tabs And Runs Of Spaces",
			input: "\tresult   =\t\t0",
			expected: []Token{
				{IDENTIFIER, "result"},
				{EQUALS, "="},
				{NUMBER, "0"},
				{Type: EOF},
			},
		},
		{
			name:  "Number Before Identifier",
			input: "12ab _x9 Max",
			expected: []Token{
				{NUMBER, "12"},
				{IDENTIFIER, "ab"},
				{IDENTIFIER, "_x9"},
				{IDENTIFIER, "Max"},
				{Type: EOF},
			},
		},
		{
			name:    "Illegal Character",
			input:   "result = a & b",
			wantErr: true,
		},
		{
			name:    "Newline Is Not A Blank",
			input:   "result = a\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Lex(%q) expected error, got tokens %v", tt.input, got)
				}
				if !errors.Is(err, ErrSyntax) {
					t.Errorf("Lex(%q) error %v is not a syntax error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lex(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, got, tt.expected)
			}
		})
	}
}
