// Package device picks where tensor kernels run. Only a CPU backend exists,
// so detection reports the host's vector extensions and core count and
// placement sizes the kernel worker pool.
package device

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fumitoshi0524/cifarnet/internal/parallel"
	"github.com/klauspost/cpuid/v2"
)

// Device describes a compute target.
type Device struct {
	Name          string
	Brand         string
	Features      []string
	PhysicalCores int
	LogicalCores  int
	// Workers is the kernel goroutine budget applied by Place.
	Workers int
}

var probed = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"sse4.2", cpuid.SSE42},
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma3", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"asimd", cpuid.ASIMD},
}

// Detect returns the preferred device for this host.
func Detect() Device {
	d := Device{
		Name:          "cpu",
		Brand:         strings.TrimSpace(cpuid.CPU.BrandName),
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
	}
	for _, f := range probed {
		if cpuid.CPU.Supports(f.id) {
			d.Features = append(d.Features, f.name)
		}
	}
	d.Workers = d.LogicalCores
	if d.Workers <= 0 || d.Workers > runtime.GOMAXPROCS(0) {
		d.Workers = runtime.GOMAXPROCS(0)
	}
	return d
}

// WithWorkers returns a copy of d using n kernel goroutines. n <= 0 keeps the
// detected value.
func (d Device) WithWorkers(n int) Device {
	if n > 0 {
		d.Workers = n
	}
	return d
}

// Place makes d the target of subsequent tensor kernels.
func Place(d Device) error {
	if d.Name != "cpu" {
		return fmt.Errorf("device %q is not available", d.Name)
	}
	parallel.SetWorkers(d.Workers)
	return nil
}

func (d Device) String() string {
	features := "none"
	if len(d.Features) > 0 {
		features = strings.Join(d.Features, ",")
	}
	brand := d.Brand
	if brand == "" {
		brand = "unknown"
	}
	return fmt.Sprintf("%s (%s, %d physical/%d logical cores, %d workers, features=%s)",
		d.Name, brand, d.PhysicalCores, d.LogicalCores, d.Workers, features)
}
