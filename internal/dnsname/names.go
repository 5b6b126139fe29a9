package dnsname

import "strings"

// ToFQDN converts a zone-relative DNS name to a fully-qualified one.
//
// Rules:
// - zone = "example.com"
// - name = "@"    -> "example.com"
// - name = ""     -> "example.com"
// - name = "www"  -> "www.example.com"
// - name = "a.b"  -> "a.b.example.com"
//
// A name that is already fully qualified within the zone is returned
// as-is.
func ToFQDN(name, zone string) string {
	zone = normalize(zone)
	name = normalize(name)

	if name == "" || name == "@" {
		return zone
	}

	if name == zone || strings.HasSuffix(name, "."+zone) {
		return name
	}

	return name + "." + zone
}

// ToRelative converts any name form to the zone-relative short form the
// UI presents. The zone apex maps to "@".
//
// Rules:
// - zone = "example.com"
// - name = "example.com"      -> "@"
// - name = "www.example.com"  -> "www"
// - name = "a.b.example.com"  -> "a.b"
// - name = "www.example.com." -> "www"
// - name = "@"                -> "@"
// - name = "www"              -> "www"
//
// ToRelative(ToFQDN(x, zone), zone) == x for any relative x.
func ToRelative(name, zone string) string {
	zone = normalize(zone)
	name = normalize(name)

	if name == "" || name == "@" || name == zone {
		return "@"
	}

	if strings.HasSuffix(name, "."+zone) {
		rel := strings.TrimSuffix(name, "."+zone)
		if rel == "" {
			return "@"
		}
		return rel
	}

	return name
}

func normalize(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".")
}
