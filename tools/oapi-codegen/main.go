//go:generate mkdir -p ../../api/openapi
//go:generate go run ./main.go

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oapi-codegen/oapi-codegen/v2/pkg/codegen"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/util"
)

var (
	openapiPath = "../../openapi.yaml"
	outputPath  = "../../api/openapi/openapi_gen.go"
	config      = codegen.Configuration{
		PackageName: "openapi",
		Generate: codegen.GenerateOptions{
			GinServer:    true,
			Models:       true,
			EmbeddedSpec: true,
		},
	}
)

func errExit(format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func main() {
	config = config.UpdateDefaults()
	if err := config.Validate(); err != nil {
		errExit("configuration error: %v\n", err)
	}

	swagger, err := util.LoadSwaggerWithOverlay(openapiPath, util.LoadSwaggerWithOverlayOpts{Strict: true})
	if err != nil {
		errExit("error loading swagger spec in %s\n: %s\n", openapiPath, err)
	}

	code, err := codegen.Generate(swagger, config)
	if err != nil {
		errExit("error generating code: %s\n", err)
	}

	if outputPath != "" {
		err = os.WriteFile(outputPath, []byte(code), 0o644)
		if err != nil {
			errExit("error writing generated code to file: %s\n", err)
		}
	} else {
		fmt.Print(code)
	}
}
