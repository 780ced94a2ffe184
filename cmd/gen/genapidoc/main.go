package genapidoc

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/cli"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/assets"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/openapidoc/schema"
	"github.com/yusufsyaifudin/openapidoc/utils"
)

const DefaultOutDir = "assets/swaggerui"

type ApiDocCfg struct {
	// Verbose prints schema generation log to stdout.
	Verbose bool
}

type ApiDoc struct {
	Config ApiDocCfg
	flags  *flag.FlagSet
	outDir string
	server string
}

var _ cli.Command = (*ApiDoc)(nil)

func NewApiDocCmd(cfg ApiDocCfg) (*ApiDoc, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("genapidocs: validation error: %w", err)
		return nil, err
	}

	a := &ApiDoc{Config: cfg}
	a.flags = flag.NewFlagSet("apidoc", flag.ContinueOnError)
	a.flags.StringVar(&a.outDir, "out", DefaultOutDir, "Directory to write swagger.json and swagger.yaml")
	a.flags.StringVar(&a.server, "server", "http://localhost:3939/", "Server URL written in the document")
	return a, nil
}

func (a *ApiDoc) Help() string {
	return `Usage: cyberhook apidoc [options]

  Generate OpenAPI 3 document of the HTTP API as JSON and YAML.

Options:

  -out      Output directory (default: assets/swaggerui)
  -server   Server URL written in the document
`
}

func (a *ApiDoc) Synopsis() string {
	return "Generate OpenAPI document of the HTTP API"
}

// Run .
// all responses must follow: respbuilder.HTTPSuccess or respbuilder.HTTPError
func (a *ApiDoc) Run(args []string) int {
	err := a.flags.Parse(args)
	if err != nil {
		return cmd.Fail("error parsing argument", err)
	}

	doc := a.Document(context.Background())

	j, err := doc.MarshalJSON()
	if err != nil {
		return cmd.Fail("cannot marshal openapi3 doc", err)
	}

	// openapi3 marshal is compact, decode it back to write indented json and yaml
	var i interface{}
	err = json.Unmarshal(j, &i)
	if err != nil {
		return cmd.Fail("cannot unmarshal openapi3 doc", err)
	}

	j, err = json.MarshalIndent(i, "", "  ")
	if err != nil {
		return cmd.Fail("cannot indent openapi3 doc", err)
	}

	y, err := utils.YamlMarshalIndent(i)
	if err != nil {
		return cmd.Fail("cannot marshal YAML openapi3 doc", err)
	}

	for name, content := range map[string][]byte{
		"swagger.json": j,
		"swagger.yaml": y,
	} {
		if err = WriteFile(content, filepath.Join(a.outDir, name)); err != nil {
			return cmd.Fail("cannot write doc", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "api doc written to %s\n", a.outDir)
	return cmd.ExitSuccess
}

// Document builds the whole API document, every route must be registered here.
func (a *ApiDoc) Document(ctx context.Context) *openapi3.T {
	components := openapi3.Components{
		Schemas:       map[string]*openapi3.SchemaRef{},
		Parameters:    map[string]*openapi3.ParameterRef{},
		Headers:       map[string]*openapi3.HeaderRef{},
		RequestBodies: map[string]*openapi3.RequestBodyRef{},
		Responses:     map[string]*openapi3.ResponseRef{},
	}
	paths := make(map[string]*openapi3.PathItem)

	SessionGet(ctx, a.Config, components, paths)
	ConfigPut(ctx, a.Config, components, paths)
	WebhookValidate(ctx, a.Config, components, paths)
	MessageSend(ctx, a.Config, components, paths)
	MessageClearHistory(ctx, a.Config, components, paths)

	return &openapi3.T{
		OpenAPI:    "3.0.0",
		Components: components,
		Info: &openapi3.Info{
			Title:       "CyberHook",
			Description: "Compose and send Discord webhook messages, with local history.",
			Version:     assets.Version,
		},
		Servers: openapi3.Servers{
			{URL: a.server, Description: "Local"},
		},
		Paths: paths,
	}
}

// WriteFile replaces fileName content, creating the parent directory when needed.
func WriteFile(content []byte, fileName string) error {
	dir := filepath.Dir(fileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fileName, content, 0o644); err != nil {
		return fmt.Errorf("cannot write file %s: %w", fileName, err)
	}

	return nil
}

func MustNewSchemaGenerator(ctx context.Context, cfg ApiDocCfg, prefix string, value interface{}) schema.GenerateOut {
	var logWriter io.Writer = io.Discard
	if cfg.Verbose {
		logWriter = os.Stdout
	}

	g, err := schema.NewGenerator(schema.WithLog(logWriter), schema.WithSchemaPrefix(prefix))
	if err != nil {
		panic(err)
	}

	out, err := g.Generate(ctx, value)
	if err != nil {
		panic(err)
	}

	return out
}
