//go:build cgo && !netgo

package dial

/* There's no way to ask which resolution functions net will end up using.
* Best we can do is reproduce the linker's logic: libc iff cgo is in use and netgo hasn't been set.
* Just checking netgo isn't enough; CGO_ENABLED=0 doesn't set it.
*
*         netgo  !netgo
* cgo     g      c
* !cgo    g      g
*
* (g == Go, c - libC)
 */

const SystemResolverName = "CGO (system's libc's getaddrinfo(), which will honour nsswitch config)"
