/* Draft docs:
*
* CONNECTION
* Logic flow
* * `host` is resolved to an ordered list of candidate addresses
*   * If it's an IPv4 literal, then an IPv6 literal, it's used as-is. No resolver is consulted, and no network traffic is generated
*   * Otherwise it's resolved with `--resolver` (qv)
* * Each candidate is tried in order, with a plain blocking connect(2). The first to succeed is used; the rest are never tried
*   * If they all fail, the last error is printed. `--all-errors` prints every candidate's
* * `port` is optional if `host` carries one, eg `example.com:443` or `[2001:db8::1]:443`. It can be a service name, which is looked up locally, never in DNS
*
* SNI
* * If `--sni` is specified, that value is used for the TLS SNI `ServerName` field
*   * If it's not given, `host` is used
*   * Exactly one trailing `.` is stripped, so `example.com.` is sent as `example.com`
*   * `ServerName` must be a name, so if it's an IPv4 or IPv6 literal, it's not sent at all
*   * Unicode names are converted to A-labels (punycode) before all that
* * Name verification needs a name. Connecting to a literal address without `--sni` therefore fails, unless `--no-verify-name` or `--insecure`
* A common use-case is giving an IP as `host` (a new server / load balancer / reverse proxy) and setting `--sni` to test its behaviour before pointing prod DNS as it.
*
* DNS
* * `system`: the Go standard library. This is either Go-native, or libc's `getaddrinfo()` via _CGO_
*   * Go-native only looks in DNS, and `/etc/hosts`, but not NIS/LDAP/etc
*   * CGO is at the whim of `nsswitch.conf` etc etc
* * `dns`: asks the nameservers in `--resolv-conf` directly, walking its search path. No `/etc/hosts`
* * `dnssec`: as `dns`, but answers must validate all the way up to the root. Takes `host` as an FQDN
* All of these drop addresses of a family (v4/v6) that isn't configured on a non-loopback interface. Loopback addresses are always kept.
*
* CLIENT CERTS
* * `--cert` and `--key` give a client credential, presented if the server asks
* * RSA keys sign with PKCS#1 v1.5, which TLS 1.3 forbids, so an RSA credential caps the handshake at TLS 1.2
* * EC keys work with any version
* * Anything else (eg ed25519) is refused
 */
package main
