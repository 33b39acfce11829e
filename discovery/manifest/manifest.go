// Package manifest discovers service descriptors from JSON manifest
// files. A manifest holds a "services" array; each element names a
// registered service type and may override its priority, retention,
// static arguments, or factory:
//
//	{
//	  "services": [
//	    {"type": "auth", "priority": 100, "retention": "resident",
//	     "args": {"realm": "main"}},
//	    {"type": "analytics", "factory": "analyticsFactory"}
//	  ]
//	}
package manifest

import (
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/dshills/orchestrate/service"
)

// typePattern validates service type names in manifests.
var typePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// Parse extracts descriptors from manifest bytes. Malformed entries are
// collected as errors but never abort the rest of the manifest.
func Parse(data []byte) ([]service.Descriptor, []error) {
	if !gjson.ValidBytes(data) {
		return nil, []error{fmt.Errorf("manifest: not valid JSON")}
	}

	services := gjson.GetBytes(data, "services")
	if !services.Exists() {
		return nil, []error{fmt.Errorf("manifest: missing services array")}
	}
	if !services.IsArray() {
		return nil, []error{fmt.Errorf("manifest: services is not an array")}
	}

	var descs []service.Descriptor
	var errs []error

	services.ForEach(func(_, item gjson.Result) bool {
		desc, err := parseEntry(item)
		if err != nil {
			errs = append(errs, err)
			return true
		}
		descs = append(descs, desc)
		return true
	})

	return descs, errs
}

// parseEntry converts one services[] element into a descriptor.
func parseEntry(item gjson.Result) (service.Descriptor, error) {
	typeName := item.Get("type").String()
	if typeName == "" {
		return service.Descriptor{}, fmt.Errorf("manifest: entry missing type")
	}
	if !typePattern.MatchString(typeName) {
		return service.Descriptor{}, fmt.Errorf("manifest: invalid type name %q", typeName)
	}

	desc := service.NewDescriptor(typeName)

	if p := item.Get("priority"); p.Exists() {
		desc = desc.WithPriority(int(p.Int()))
	}

	if r := item.Get("retention"); r.Exists() {
		ret, ok := service.ParseRetention(r.String())
		if !ok {
			return service.Descriptor{}, fmt.Errorf("manifest: %s: invalid retention %q", typeName, r.String())
		}
		desc = desc.WithRetention(ret)
	}

	if a := item.Get("args"); a.Exists() {
		args, ok := a.Value().(map[string]any)
		if !ok {
			return service.Descriptor{}, fmt.Errorf("manifest: %s: args is not an object", typeName)
		}
		desc = desc.WithArgs(args)
	}

	if f := item.Get("factory"); f.Exists() {
		desc = desc.WithFactory(f.String())
	}

	return desc, nil
}
