//go:build !cgo || netgo

package dial

const SystemResolverName = "Go native (/etc/hosts and resolv.conf only; no nsswitch)"
