// Package hcl discovers service descriptors from HCL manifest files.
// A manifest holds one or more service blocks:
//
//	service "auth" {
//	  priority  = 100
//	  retention = "resident"
//	  args = {
//	    realm = "main"
//	  }
//	}
package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/dshills/orchestrate/service"
)

// rootSchema is the top-level structure: one or more 'service' blocks.
type rootSchema struct {
	Services []*serviceBlock `hcl:"service,block"`
}

// serviceBlock is a single 'service' block for decoding purposes.
type serviceBlock struct {
	Type      string    `hcl:"type,label"`
	Priority  *int      `hcl:"priority,optional"`
	Retention *string   `hcl:"retention,optional"`
	Factory   *string   `hcl:"factory,optional"`
	Args      cty.Value `hcl:"args,optional"`
}

// ParseFile decodes the service blocks of one HCL file.
func ParseFile(path string) ([]service.Descriptor, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", path, diags)
	}
	return decode(file)
}

// Parse decodes the service blocks of manifest bytes. The filename is
// used for diagnostics only.
func Parse(data []byte, filename string) ([]service.Descriptor, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}
	return decode(file)
}

func decode(file *hcl.File) ([]service.Descriptor, error) {
	var root rootSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	descs := make([]service.Descriptor, 0, len(root.Services))
	for _, block := range root.Services {
		desc, err := block.descriptor()
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func (b *serviceBlock) descriptor() (service.Descriptor, error) {
	if b.Type == "" {
		return service.Descriptor{}, fmt.Errorf("service block missing type label")
	}

	desc := service.NewDescriptor(b.Type)

	if b.Priority != nil {
		desc = desc.WithPriority(*b.Priority)
	}

	if b.Retention != nil {
		ret, ok := service.ParseRetention(*b.Retention)
		if !ok {
			return service.Descriptor{}, fmt.Errorf("service %q: invalid retention %q", b.Type, *b.Retention)
		}
		desc = desc.WithRetention(ret)
	}

	if b.Factory != nil {
		desc = desc.WithFactory(*b.Factory)
	}

	if b.Args != cty.NilVal && !b.Args.IsNull() {
		args, err := argsToGo(b.Args)
		if err != nil {
			return service.Descriptor{}, fmt.Errorf("service %q: %w", b.Type, err)
		}
		desc = desc.WithArgs(args)
	}

	return desc, nil
}
