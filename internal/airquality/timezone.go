package airquality

import (
	"sync"
	"time"
)

// DisplayLayout renders timestamps as MM/dd/yyyy, h:mm:ss AM.
const DisplayLayout = "01/02/2006, 3:04:05 PM"

// DefaultZone is used for locations missing from the table.
const DefaultZone = "Asia/Jakarta"

var locationZones = map[string]string{
	"Jakarta":    "Asia/Jakarta",
	"Yogyakarta": "Asia/Jakarta",
	"Bandung":    "Asia/Jakarta",
	"Surabaya":   "Asia/Jakarta",
	"Denpasar":   "Asia/Makassar",
	"Makassar":   "Asia/Makassar",
	"Balikpapan": "Asia/Makassar",
	"Jayapura":   "Asia/Jayapura",
}

// Offsets used when the host has no zoneinfo database.
var fixedOffsets = map[string]*time.Location{
	"Asia/Jakarta":  time.FixedZone("WIB", 7*60*60),
	"Asia/Makassar": time.FixedZone("WITA", 8*60*60),
	"Asia/Jayapura": time.FixedZone("WIT", 9*60*60),
}

var (
	zoneMu    sync.Mutex
	zoneCache = make(map[string]*time.Location)
)

// ZoneName returns the IANA zone identifier for a location name.
func ZoneName(location string) string {
	if z, ok := locationZones[location]; ok {
		return z
	}
	return DefaultZone
}

// Zone resolves the display time zone of a location.
func Zone(location string) *time.Location {
	name := ZoneName(location)

	zoneMu.Lock()
	defer zoneMu.Unlock()

	if loc, ok := zoneCache[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = fixedOffsets[name]
	}
	zoneCache[name] = loc
	return loc
}

// FormatLocal renders t in the local time of the given location.
func FormatLocal(t time.Time, location string) string {
	return t.In(Zone(location)).Format(DisplayLayout)
}
