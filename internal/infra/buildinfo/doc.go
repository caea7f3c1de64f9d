// Package buildinfo exposes build-time metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/tachikv-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
