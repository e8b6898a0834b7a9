package dataprocessing

// SchemaGeneration is the closed set of documented EVE h5 layout
// generations.
type SchemaGeneration int

const (
	// GenerationV1 files keep all measurements directly in the chain node
	// and have no snapshot concept.
	GenerationV1 SchemaGeneration = iota
	// GenerationV2Plus files split each chain into a standard and a
	// snapshot section.
	GenerationV2Plus
)

func generationFor(eveH5Version float64) SchemaGeneration {
	if eveH5Version < 2.0 {
		return GenerationV1
	}
	return GenerationV2Plus
}

var (
	standardSectionNames = []string{"default", "main"}
	snapshotSectionNames = []string{"alternate", "snapshot"}
)

// resolveSections picks the standard and snapshot subtrees of a chain for
// the file's schema generation. For V1 the chain itself is the standard
// section and there is no snapshot section.
func resolveSections(chain *GroupRecord, eveH5Version float64) (standard, snapshot *GroupRecord, err error) {
	if generationFor(eveH5Version) == GenerationV1 {
		return chain, nil, nil
	}
	standard = firstChild(chain, standardSectionNames)
	if standard == nil {
		return nil, nil, &VersionResolutionError{
			Version: eveH5Version, Section: "standard", Candidates: standardSectionNames,
		}
	}
	snapshot = firstChild(chain, snapshotSectionNames)
	if snapshot == nil {
		return nil, nil, &VersionResolutionError{
			Version: eveH5Version, Section: "snapshot", Candidates: snapshotSectionNames,
		}
	}
	return standard, snapshot, nil
}

func firstChild(rec *GroupRecord, names []string) *GroupRecord {
	for _, name := range names {
		if child, ok := rec.Children[name]; ok {
			return child
		}
	}
	return nil
}
