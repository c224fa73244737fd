package codebase

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dhamidi/declscan/model"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "declscan"

// LSPServer exposes a Codebase over the Language Server Protocol:
// textDocument/didOpen, didChange, didClose and didSave keep the
// codebase's declaration graph synced with editor buffers;
// textDocument/documentSymbol answers with the classes, interfaces,
// methods and properties the parser extracted; parse failures are
// reported back as diagnostics instead of being swallowed.
//
// textDocument/completion is out of scope here: producing completion
// candidates needs a live AST with expression-level type inference,
// not the declaration-level graph this parser builds.
//
// Grounded on the teacher's java/codebase/lsp.go wiring of glsp's
// protocol.Handler and server.Server; the archive/jar-scanning
// initialization the teacher does for bundled JDK sources has no
// analog here and is dropped.
type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
}

// NewLSPServer constructs an LSP server. Its codebase is created lazily
// in initialize, once the client has told us the workspace root.
func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{version: version}

	ls.handler = protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		Shutdown:                ls.shutdown,
		SetTrace:                ls.setTrace,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		TextDocumentDidSave:     ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

// RunStdio serves LSP requests over stdin/stdout until the client
// disconnects.
func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir)

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.codebase.ScanAll()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.updateAndPublish(ctx, params.TextDocument.URI, path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.updateAndPublish(ctx, params.TextDocument.URI, path, []byte(textChange.Text))
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.updateAndPublish(ctx, params.TextDocument.URI, path, []byte(*params.Text))
		return nil
	}
	if err := ls.codebase.ScanFile(path); err != nil {
		ls.publishParseError(ctx, params.TextDocument.URI, err)
	} else {
		ls.publishParseError(ctx, params.TextDocument.URI, nil)
	}
	return nil
}

func (ls *LSPServer) updateAndPublish(ctx *glsp.Context, uri, path string, content []byte) {
	err := ls.codebase.UpdateFile(path, content)
	ls.codebase.Graph().ResolveReferences()
	ls.publishParseError(ctx, uri, err)
}

// publishParseError reports a file's current parse outcome as an LSP
// diagnostic. err == nil clears any previously published diagnostic.
func (ls *LSPServer) publishParseError(ctx *glsp.Context, uri string, err error) {
	diagnostics := []protocol.Diagnostic{}
	if err != nil {
		severity := protocol.DiagnosticSeverityError
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
			Severity: &severity,
			Source:   strPtr(lsName),
			Message:  err.Error(),
		})
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	var symbols []protocol.DocumentSymbol
	for _, pkg := range ls.codebase.AllPackages() {
		for _, typ := range pkg.Types {
			if typ.SourceFile != path {
				continue
			}
			symbols = append(symbols, typeToSymbol(typ))
		}
		for _, fn := range pkg.Functions {
			if fn.SourceFile != path {
				continue
			}
			symbols = append(symbols, callableToSymbol(fn))
		}
	}
	return symbols, nil
}

func typeToSymbol(typ *model.Type) protocol.DocumentSymbol {
	kind := protocol.SymbolKindClass
	if typ.IsInterface {
		kind = protocol.SymbolKindInterface
	}
	rng := lineRange(typ.StartLine, typ.EndLine)

	var children []protocol.DocumentSymbol
	for _, m := range typ.Methods {
		children = append(children, callableToSymbol(m))
	}
	for _, p := range typ.Properties {
		children = append(children, protocol.DocumentSymbol{
			Name:           p.Name,
			Kind:           protocol.SymbolKindField,
			Range:          lineRange(p.StartLine, p.EndLine),
			SelectionRange: lineRange(p.StartLine, p.EndLine),
		})
	}
	for _, c := range typ.Constants {
		children = append(children, protocol.DocumentSymbol{
			Name:           c.Name,
			Kind:           protocol.SymbolKindConstant,
			Range:          lineRange(c.StartLine, c.EndLine),
			SelectionRange: lineRange(c.StartLine, c.EndLine),
		})
	}

	return protocol.DocumentSymbol{
		Name:           typ.QualifiedName,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
		Children:       children,
	}
}

func callableToSymbol(c *model.Callable) protocol.DocumentSymbol {
	kind := protocol.SymbolKindFunction
	if c.Kind == model.KindMethod {
		kind = protocol.SymbolKindMethod
	}
	name := c.Name
	if name == "" {
		name = "{closure}"
	}
	rng := lineRange(c.StartLine, c.EndLine)
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
	}
}

func lineRange(start, end int) protocol.Range {
	if start <= 0 {
		start = 1
	}
	if end < start {
		end = start
	}
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(start - 1), Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(end - 1), Character: 0},
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
