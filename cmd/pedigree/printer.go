// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pedigree/pedigree/internal/pkg/must"
	"sigs.k8s.io/yaml"
)

type printer interface {
	Print(any) // Print a single item.
}

type jsonPrinter struct{ *json.Encoder }

func (p jsonPrinter) Print(v any) { must.Must(p.Encode(v)) }

type yamlPrinter struct{ io.Writer }

func (p yamlPrinter) Print(v any) { must.Must1(p.Write(must.Must1(yaml.Marshal(v)))) }

func newPrinter(w io.Writer) printer {
	switch outputFlag.Value {
	case "json":
		return jsonPrinter{Encoder: json.NewEncoder(w)}

	case "json-pretty":
		p := jsonPrinter{Encoder: json.NewEncoder(w)}
		p.SetIndent("", "  ")
		return p

	case "yaml":
		return yamlPrinter{Writer: w}

	default:
		must.Must(fmt.Errorf("output type %v is not supported by this command", outputFlag.Value))
		return nil
	}
}
