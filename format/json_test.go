package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhamidi/declscan/model"
)

func TestEncodeRendersTypesAndFunctions(t *testing.T) {
	pkg := &model.Package{
		QualifiedName: `App`,
		Types: []*model.Type{
			{
				QualifiedName: `App\Greeter`,
				SourceFile:    "greeter.php",
				StartLine:     1,
				EndLine:       5,
				Modifiers:     model.Final,
				Methods: []*model.Callable{
					{Kind: model.KindMethod, Name: "greet", StartLine: 2, EndLine: 4},
				},
			},
		},
		Functions: []*model.Callable{
			{Kind: model.KindFunction, Name: "main", StartLine: 1, EndLine: 1},
		},
	}

	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode([]*model.Package{pkg}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded []jsonPackage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Name != "App" {
		t.Fatalf("expected one package named App, got %+v", decoded)
	}
	if len(decoded[0].Types) != 1 || decoded[0].Types[0].Name != `App\Greeter` {
		t.Fatalf("expected type App\\Greeter, got %+v", decoded[0].Types)
	}
	if len(decoded[0].Types[0].Modifiers) != 1 || decoded[0].Types[0].Modifiers[0] != "final" {
		t.Fatalf("expected final modifier, got %+v", decoded[0].Types[0].Modifiers)
	}
	if len(decoded[0].Functions) != 1 || decoded[0].Functions[0].Name != "main" {
		t.Fatalf("expected function main, got %+v", decoded[0].Functions)
	}
}
