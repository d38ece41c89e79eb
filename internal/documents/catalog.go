// internal/documents/catalog.go
package documents

// Kind names a required-document category together with its resolution
// configuration.
type Kind struct {
	Name  string
	Keys  []string
	Fuzzy *FuzzyRule
}

// Catalog lists the document categories the admin views resolve. Adding a
// category means adding an entry here, nothing else.
var Catalog = []Kind{
	{
		Name: "primary_id_front",
		Keys: []string{"primary_id_front", "primary_id_front_url", "primaryIdFront"},
		Fuzzy: &FuzzyRule{
			All: []string{"primary"},
			Any: []string{"front"},
		},
	},
	{
		Name: "primary_id_back",
		Keys: []string{"primary_id_back", "primary_id_back_url", "primaryIdBack"},
		Fuzzy: &FuzzyRule{
			All: []string{"primary"},
			Any: []string{"back"},
		},
	},
	{
		Name: "secondary_id",
		Keys: []string{"secondary_id", "secondary_id_url", "secondaryId"},
		Fuzzy: &FuzzyRule{
			All: []string{"secondary"},
			Any: []string{"id"},
		},
	},
	{
		Name: "nbi_clearance",
		Keys: []string{"nbi_clearance", "nbi_clearance_url", "nbiClearance", "nbi"},
		Fuzzy: &FuzzyRule{
			Any: []string{"nbi", "clearance"},
		},
	},
	{
		Name: "barangay_clearance",
		Keys: []string{"barangay_clearance", "barangay_clearance_url", "barangayClearance"},
		Fuzzy: &FuzzyRule{
			All: []string{"barangay"},
		},
	},
	{
		Name: "proof_of_address",
		Keys: []string{"proof_of_address", "proof_of_address_url", "proofOfAddress"},
		Fuzzy: &FuzzyRule{
			All: []string{"address"},
			Any: []string{"proof", "bill"},
		},
	},
	{
		Name: "certificates",
		Keys: []string{"certificates", "certifications", "certificate_urls"},
		Fuzzy: &FuzzyRule{
			Any: []string{"certificate", "certification", "training"},
		},
	},
}

// Lookup finds a catalog kind by name.
func Lookup(name string) (Kind, bool) {
	for _, kind := range Catalog {
		if kind.Name == name {
			return kind, true
		}
	}
	return Kind{}, false
}

// ResolveAll maps every catalog kind to its URLs within a documents blob.
// Kinds with nothing attached are omitted.
func ResolveAll(docs map[string]interface{}) map[string][]string {
	out := make(map[string][]string)
	for _, kind := range Catalog {
		if urls := URLs(Resolve(docs, kind.Keys, kind.Fuzzy)); len(urls) > 0 {
			out[kind.Name] = urls
		}
	}
	return out
}
