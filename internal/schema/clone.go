package schema

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneSheets(sheets []NomenclatureSheet) []NomenclatureSheet {
	if sheets == nil {
		return nil
	}
	out := make([]NomenclatureSheet, len(sheets))
	for i, s := range sheets {
		out[i] = s
		out[i].Mapping = make(map[string]string, len(s.Mapping))
		for k, v := range s.Mapping {
			out[i].Mapping[k] = v
		}
	}
	return out
}

// Clone returns a deep copy so callers can never mutate registry state
func (v *Version) Clone() *Version {
	out := *v

	out.Dataset.Licenses = append([]License(nil), v.Dataset.Licenses...)
	out.Dataset.Sources = append([]SourceRef(nil), v.Dataset.Sources...)
	out.Dataset.Contributors = append([]Contributor(nil), v.Dataset.Contributors...)

	out.Production.ColumnNames = cloneStrings(v.Production.ColumnNames)
	out.Technosphere.IndexNames = cloneStrings(v.Technosphere.IndexNames)
	out.Technosphere.ColumnNames = cloneStrings(v.Technosphere.ColumnNames)

	out.Extensions.ColumnNames = cloneStrings(v.Extensions.ColumnNames)
	if v.Extensions.Sheets != nil {
		out.Extensions.Sheets = make([]ExtensionSheet, len(v.Extensions.Sheets))
		for i, s := range v.Extensions.Sheets {
			out.Extensions.Sheets[i] = s
			out.Extensions.Sheets[i].IndexNames = cloneStrings(s.IndexNames)
		}
	}

	out.Nomenclature = NomenclatureSchema{
		Locations:  cloneSheets(v.Nomenclature.Locations),
		Sectors:    cloneSheets(v.Nomenclature.Sectors),
		Products:   cloneSheets(v.Nomenclature.Products),
		Extensions: cloneSheets(v.Nomenclature.Extensions),
	}

	if v.Resources != nil {
		out.Resources = make([]ResourceDescriptor, len(v.Resources))
		for i, r := range v.Resources {
			out.Resources[i] = r
			if r.Schema != nil {
				s := TableSchema{Fields: append([]Field(nil), r.Schema.Fields...)}
				out.Resources[i].Schema = &s
			}
		}
	}
	return &out
}
