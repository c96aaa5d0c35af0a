package catalog

// The local table covers the satellites people actually ask about by name.
// Hits here never touch the network, and alias lookups ("ISS") resolve to the
// catalog's canonical display names.

var localEntries = []Entry{
	{NORADID: 25544, Name: "ISS (ZARYA)", ObjectType: ObjectPayload, Country: "ISS", LaunchDate: "1998-11-20"},
	{NORADID: 20580, Name: "HST", ObjectType: ObjectPayload, Country: "US", LaunchDate: "1990-04-24"},
	{NORADID: 48274, Name: "CSS (TIANHE)", ObjectType: ObjectPayload, Country: "PRC", LaunchDate: "2021-04-29"},
	{NORADID: 25338, Name: "NOAA 15", ObjectType: ObjectPayload, Country: "US", LaunchDate: "1998-05-13"},
	{NORADID: 28654, Name: "NOAA 18", ObjectType: ObjectPayload, Country: "US", LaunchDate: "2005-05-20"},
	{NORADID: 33591, Name: "NOAA 19", ObjectType: ObjectPayload, Country: "US", LaunchDate: "2009-02-06"},
	{NORADID: 25994, Name: "TERRA", ObjectType: ObjectPayload, Country: "US", LaunchDate: "1999-12-18"},
	{NORADID: 27424, Name: "AQUA", ObjectType: ObjectPayload, Country: "US", LaunchDate: "2002-05-04"},
	{NORADID: 39084, Name: "LANDSAT 8", ObjectType: ObjectPayload, Country: "US", LaunchDate: "2013-02-11"},
	{NORADID: 43013, Name: "NOAA 20 (JPSS-1)", ObjectType: ObjectPayload, Country: "US", LaunchDate: "2017-11-18"},
}

// localAliases maps normalized colloquial names onto NORAD IDs.
var localAliases = map[string]int{
	"iss":                         25544,
	"zarya":                       25544,
	"international space station": 25544,
	"space station":               25544,
	"hubble":                      20580,
	"hst":                         20580,
	"hubble space telescope":      20580,
	"tiangong":                    48274,
	"tianhe":                      48274,
	"css":                         48274,
	"landsat":                     39084,
}

// localTable indexes the built-in entries for exact, alias, and prefix lookup.
type localTable struct {
	byID map[int]Entry
}

func newLocalTable() *localTable {
	t := &localTable{byID: make(map[int]Entry, len(localEntries))}
	for _, e := range localEntries {
		t.byID[e.NORADID] = e
	}
	return t
}

// size returns the number of entries in the table.
func (t *localTable) size() int {
	return len(t.byID)
}

// lookupID returns the entry for a NORAD ID, if present.
func (t *localTable) lookupID(id int) (Entry, bool) {
	e, ok := t.byID[id]
	return e, ok
}

// lookupName resolves a normalized name through aliases, exact canonical
// names, and unique canonical-name prefixes, in that order.
func (t *localTable) lookupName(normalized string) (Entry, bool) {
	if id, ok := localAliases[normalized]; ok {
		return t.byID[id], true
	}

	var hit Entry
	var hits int
	for _, e := range localEntries {
		name := normalize(e.Name)
		if name == normalized {
			return e, true
		}
		if len(normalized) >= 3 && len(name) > len(normalized) && name[:len(normalized)] == normalized {
			hit = e
			hits++
		}
	}
	if hits == 1 {
		return hit, true
	}
	return Entry{}, false
}
