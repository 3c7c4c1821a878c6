package schema

import "mriopack/pkg/contracts/domain"

var (
	sectorColumns  = []string{"location", "sector name", "sector code 1", "sector code 2"}
	productColumns = []string{"location", "product name", "product code 1", "product code 2", "unit"}
)

const exiobaseDescription = `The hybrid supply-use and input-output tables of EXIOBASE are available for the year 2011. When new data become available the hybrid supply-use and input-output tables may be generated. The latest version can be identified by its version number and its advised to use this latest version. Previous versions will still be available for reference purpose.

References:

* Merciai, Stefano, and Jannick Schmidt. 2016. Physical/Hybrid Supply and Use Tables. Methodological Report. EU FP7 DESIRE Project.
* Merciai, Stefano, and Jannick Schmidt. 2018. Methodology for the Construction of Global Multi-Regional Hybrid Supply and Use Tables for the EXIOBASE v3 Database. Journal of Industrial Ecology 22, no. 3 (2018): 516-31. doi:10.1111/jiec.12713.`

// StandardResources returns the descriptor list every version starts from.
// Descriptors whose file is not produced are pruned when the package is built.
func StandardResources(codec Codec, output OutputFormat) []ResourceDescriptor {
	table := ".csv" + codec.Extension()
	technosphere := ResourceDescriptor{
		Name:      ResourceTechnosphere,
		Path:      "technosphere" + SparseSuffix,
		Profile:   "data-resource",
		MediaType: SparseMediaType,
		Title:     "Technosphere coefficients (identity minus normalized input-output flows)",
		Format:    "coo",
	}
	if output == OutputTable {
		technosphere.Path = "technosphere" + table
		technosphere.Profile = "tabular-data-resource"
		technosphere.MediaType = codec.TableMediaType()
		technosphere.Format = "csv"
	}

	productionFields := make([]Field, 0, 9)
	for _, name := range []string{"location", "sector name", "sector code 1", "sector code 2", "product name", "product code 1", "product code 2", "unit"} {
		productionFields = append(productionFields, Field{Name: name, Type: "string"})
	}
	productionFields = append(productionFields, Field{Name: "value", Type: "number"})

	return []ResourceDescriptor{
		{
			Name:      ResourceExtensions,
			Path:      "extensions" + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Extension exchange values",
			Format:    "csv",
		},
		{
			Name:      ResourceProduction,
			Path:      "production" + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Diagonal principal production values",
			Format:    "csv",
			Schema:    &TableSchema{Fields: productionFields},
		},
		technosphere,
		{
			Name:      ResourceLocations,
			Path:      ResourceLocations + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Locations",
			Format:    "csv",
			Schema:    &TableSchema{Fields: []Field{{Name: "code", Type: "string"}, {Name: "name", Type: "string"}}},
		},
		{
			Name:      ResourceSectors,
			Path:      ResourceSectors + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Sectors (activities)",
			Format:    "csv",
			Schema: &TableSchema{Fields: []Field{
				{Name: "key", Type: "string"}, {Name: "location", Type: "string"}, {Name: "name", Type: "string"},
				{Name: "code 1", Type: "string"}, {Name: "code 2", Type: "string"},
			}},
		},
		{
			Name:      ResourceProducts,
			Path:      ResourceProducts + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Products",
			Format:    "csv",
			Schema: &TableSchema{Fields: []Field{
				{Name: "key", Type: "string"}, {Name: "location", Type: "string"}, {Name: "name", Type: "string"},
				{Name: "code 1", Type: "string"}, {Name: "code 2", Type: "string"}, {Name: "unit", Type: "string"},
			}},
		},
		{
			Name:      ResourceExtensionCategories,
			Path:      ResourceExtensionCategories + table,
			Profile:   "tabular-data-resource",
			MediaType: codec.TableMediaType(),
			Title:     "Extension categories",
			Format:    "csv",
			Schema: &TableSchema{Fields: []Field{
				{Name: "key", Type: "string"}, {Name: "name", Type: "string"}, {Name: "unit", Type: "string"},
				{Name: "compartment", Type: "string"}, {Name: "kind", Type: "string"},
			}},
		},
	}
}

func exiobaseDataset(release string) DatasetInfo {
	return DatasetInfo{
		Slug:        "exiobase",
		Name:        "EXIOBASE " + release + " Hybrid",
		ID:          "exiobase-" + release + "-hybrid",
		Version:     release,
		Description: exiobaseDescription,
		Image:       "https://exiobase.eu/images/basisafbeeldingen/ExioBase_Logo_600.png",
		Licenses: []License{{
			Name:  "CC-BY-SA-4.0",
			Path:  "https://creativecommons.org/licenses/by-sa/4.0/",
			Title: "Creative Commons Attribution Share-Alike 4.0",
		}},
		Sources: []SourceRef{{
			Title: "EXIOBASE raw data download",
			Path:  "https://exiobase.eu/index.php/data-download/exiobase3hyb",
		}},
		Contributors: []Contributor{
			{Title: "Chris Mutel", Email: "cmutel@gmail.com", Path: "https://chris.mutel.org/", Role: "author"},
			{Title: "Benjamin W. Portner", Email: "benjamin.portner@bauhaus-luftfahrt.net", Role: "author"},
		},
	}
}

func exiobaseNomenclature(workbook string, landUseKind domain.ExtensionKind) NomenclatureSchema {
	return NomenclatureSchema{
		Locations: []NomenclatureSheet{{
			Source:  Source{Filename: workbook, Worksheet: "Country"},
			Mapping: map[string]string{"Country code": "code", "Country name": "name"},
		}},
		Sectors: []NomenclatureSheet{{
			Source: Source{Filename: workbook, Worksheet: "Activities"},
			Mapping: map[string]string{
				"Contry code":     "location",
				"Activity name":   "name",
				"Activity code 1": "code 1",
				"Activity code 2": "code 2",
			},
		}},
		Products: []NomenclatureSheet{{
			Source: Source{Filename: workbook, Worksheet: "Products_HIOT"},
			Mapping: map[string]string{
				"Country code":   "location",
				"Product name":   "name",
				"Product code 1": "code 1",
				"Product code 2": "code 2",
				"Unit":           "unit",
			},
		}},
		Extensions: []NomenclatureSheet{
			{
				Source:  Source{Filename: workbook, Worksheet: "Resources"},
				Mapping: map[string]string{"Resource name": "name", "Unit": "unit"},
				Kind:    domain.KindResource,
			},
			{
				Source:  Source{Filename: workbook, Worksheet: "Land"},
				Mapping: map[string]string{"Land type": "name", "Unit": "unit"},
				Kind:    landUseKind,
			},
			{
				Source:  Source{Filename: workbook, Worksheet: "Emissions"},
				Mapping: map[string]string{"Emission name": "name", "Unit": "unit", "Compartment": "compartment"},
				Kind:    domain.KindEmission,
			},
		},
	}
}

func extensionSheet(kind domain.ExtensionKind, workbook, worksheet string, withCompartment bool) ExtensionSheet {
	index := []string{"name", "unit"}
	if withCompartment {
		index = append(index, "compartment")
	}
	return ExtensionSheet{
		Kind:       kind,
		Source:     Source{Filename: workbook, Worksheet: worksheet},
		IndexNames: index,
	}
}

// builtinVersions returns fresh copies of the versions shipped with the converter
func builtinVersions() []Version {
	// The 3.3.18 extensions are published as a binary workbook, so conversion
	// stops with an unsupported format error at the extensions stage.
	const ext3318 = "MR_HIOT_2011_v3_3_18_extensions.xlsb"
	v3318 := Version{
		ID:          "3.3.18 hybrid",
		Dataset:     exiobaseDataset("3.3.18"),
		Compression: CodecBzip2,
		Production: ProductionSchema{
			Source:      Source{Filename: "MR_HIOT_2011_v3_3_18_principal_production.csv"},
			ColumnNames: append(cloneStrings(sectorColumns), productColumns[1:]...),
			SaveAs:      "production.csv.bz2",
		},
		Technosphere: TechnosphereSchema{
			Source:      Source{Filename: "MR_HIOT_2011_v3_3_18_by_product_technology.csv"},
			IndexNames:  cloneStrings(productColumns),
			ColumnNames: cloneStrings(sectorColumns),
			Output:      OutputSparse,
			SaveAs:      "technosphere" + SparseSuffix,
		},
		Extensions: ExtensionsSchema{
			Sheets: []ExtensionSheet{
				extensionSheet(domain.KindResource, ext3318, "resource_act", false),
				extensionSheet(domain.KindLandUse, ext3318, "Land_act", false),
				extensionSheet(domain.KindEmission, ext3318, "Emiss_act", true),
				extensionSheet(domain.KindUnregisteredWasteEmission, ext3318, "Emis_unreg_w_act", true),
				extensionSheet(domain.KindWasteSupply, ext3318, "waste_sup_act", false),
				extensionSheet(domain.KindWasteUse, ext3318, "waste_use_act", false),
				extensionSheet(domain.KindPackagingSupply, ext3318, "pack_sup_waste_act", false),
				extensionSheet(domain.KindPackagingUse, ext3318, "pack_use_waste_act", false),
				extensionSheet(domain.KindMachinerySupply, ext3318, "mach_sup_waste_act", false),
				extensionSheet(domain.KindMachineryUse, ext3318, "mach_use_waste_act", false),
				extensionSheet(domain.KindStockAddition, ext3318, "stock_addition_act", false),
				extensionSheet(domain.KindOtherSupplyUse, ext3318, "crop_res_act", false),
			},
			ColumnNames: cloneStrings(sectorColumns),
			SaveAs:      "extensions.csv.bz2",
		},
		Nomenclature: exiobaseNomenclature("Classifications_v_3_3_18.xlsx", domain.KindLandUse),
		Resources:    StandardResources(CodecBzip2, OutputSparse),
	}

	// 3.3.17 was published as binary workbooks only. The entry stays registered
	// so that its layout is documented; conversion stops with an unsupported
	// format error at the production stage.
	const hiot3317 = "Exiobase_MR_HIOT_2011_v3_3_17_by_prod_tech.xlsb"
	const ext3317 = "MR_HIOT_2011_v3_3_17_extensions.xlsb"
	v3317 := Version{
		ID:          "3.3.17 hybrid",
		Dataset:     exiobaseDataset("3.3.17"),
		Compression: CodecBzip2,
		Production: ProductionSchema{
			Source:      Source{Filename: hiot3317, Worksheet: "Principal_production_vector"},
			ColumnNames: append(cloneStrings(sectorColumns), productColumns[1:]...),
			SaveAs:      "production.csv.bz2",
		},
		Technosphere: TechnosphereSchema{
			Source:      Source{Filename: hiot3317, Worksheet: "HIOT"},
			IndexNames:  cloneStrings(productColumns),
			ColumnNames: cloneStrings(sectorColumns),
			Output:      OutputTable,
			SaveAs:      "technosphere.csv.bz2",
		},
		Extensions: ExtensionsSchema{
			Sheets: []ExtensionSheet{
				extensionSheet(domain.KindResource, ext3317, "resource_act", false),
				extensionSheet(domain.KindLandUse, ext3317, "Land_act", false),
				extensionSheet(domain.KindEmission, ext3317, "Emiss_act", true),
			},
			ColumnNames: cloneStrings(sectorColumns),
			SaveAs:      "extensions.csv.bz2",
		},
		Nomenclature: exiobaseNomenclature("Classifications_v_3_3_17.xlsx", domain.KindLandUse),
		Resources:    StandardResources(CodecBzip2, OutputTable),
	}

	return []Version{v3317, v3318}
}
