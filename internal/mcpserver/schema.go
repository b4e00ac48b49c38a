package mcpserver

import (
	"fmt"
	"sort"
	"strings"
)

// collectionHelp describes a Solr collection for tool consumers. The
// field lists name the columns most queries filter or select on; the
// data API accepts any field the collection actually carries.
var collectionHelp = map[string]struct {
	Description string
	Fields      string
}{
	"genome": {
		Description: "Complete bacterial and viral genome assemblies with metadata including taxonomy, quality metrics, geographic location, and antimicrobial resistance data.",
		Fields:      "genome_id, genome_name, species, genus, strain, taxon_id, genome_status, genome_length, contigs, gc_content, isolation_country, host_name, collection_year, antimicrobial_resistance, date_inserted",
	},
	"genome_feature": {
		Description: "Individual genes, proteins, and functional elements within genomes, including annotations, functional classifications, and sequence information.",
		Fields:      "feature_id, genome_id, genome_name, patric_id, refseq_locus_tag, gene, product, feature_type, annotation, start, end, strand, na_length, aa_length",
	},
	"genome_sequence": {
		Description: "Raw DNA/RNA sequence data for genomes and individual sequences with accession numbers and sequence metadata.",
		Fields:      "sequence_id, genome_id, genome_name, accession, description, length, gc_content, sequence_type",
	},
	"antibiotics": {
		Description: "Antimicrobial compounds with chemical properties, mechanisms of action, and pharmacological classifications.",
		Fields:      "antibiotic_name, pubchem_cid, cas_id, molecular_formula, atc_classification, mechanism_of_action, pharmacological_classes",
	},
	"genome_amr": {
		Description: "Antimicrobial resistance phenotypes linked to specific genomes and laboratory typing methods.",
		Fields:      "genome_id, genome_name, antibiotic, resistant_phenotype, measurement, measurement_unit, laboratory_typing_method, testing_standard",
	},
	"sp_gene": {
		Description: "Specialty genes such as AMR genes, virulence factors, and drug targets mapped onto genomes.",
		Fields:      "genome_id, genome_name, patric_id, gene, product, property, source, evidence, identity, e_value",
	},
	"taxonomy": {
		Description: "Taxonomic classification data for organisms with hierarchical relationships and nomenclature.",
		Fields:      "taxon_id, taxon_name, taxon_rank, lineage, lineage_ids, parent_id, genetic_code",
	},
	"pathway": {
		Description: "Biological pathway annotations covering metabolic and signaling pathways per genome.",
		Fields:      "genome_id, genome_name, patric_id, pathway_id, pathway_name, pathway_class, ec_number, ec_description",
	},
	"subsystem": {
		Description: "Functional subsystem classifications for metabolic and cellular processes per genome.",
		Fields:      "genome_id, genome_name, patric_id, subsystem_id, subsystem_name, superclass, class, subclass, role_name",
	},
	"strain": {
		Description: "Viral strain information with genetic segments, host data, and epidemiological metadata.",
		Fields:      "strain_id, strain_name, taxon_id, species, host_name, isolation_country, collection_year, segments",
	},
	"surveillance": {
		Description: "Clinical surveillance data including patient demographics, disease status, and treatment outcomes.",
		Fields:      "sample_identifier, host_species, collection_country, collection_year, disease_status, pathogen_test_type, pathogen_test_result",
	},
	"epitope": {
		Description: "Antigenic epitope data for vaccine and immunology research.",
		Fields:      "epitope_id, epitope_sequence, epitope_type, protein_name, organism, host_name, assay_results",
	},
	"protein_structure": {
		Description: "Protein structural data including PDB identifiers and structural classifications.",
		Fields:      "pdb_id, title, organism_name, gene, product, method, resolution, release_date",
	},
	"sequence_feature": {
		Description: "Sequence variants and mutations with functional annotations.",
		Fields:      "sf_id, sf_name, sf_category, genome_id, genome_name, gene, product, source, variant_types",
	},
	"bioset": {
		Description: "Experimental datasets and study designs including treatment conditions and analysis protocols.",
		Fields:      "bioset_id, bioset_name, bioset_type, exp_id, exp_name, organism, strain, treatment_type",
	},
	"bioset_result": {
		Description: "Per-entity results from expression, proteomics, and other high-throughput studies.",
		Fields:      "id, bioset_id, exp_id, entity_id, entity_name, gene, product, value, fc, p_value",
	},
	"experiment": {
		Description: "Experimental metadata including study design, protocols, and experimental conditions.",
		Fields:      "exp_id, exp_name, exp_type, organism, strain, study_title, study_pi, samples",
	},
	"ppi": {
		Description: "Protein-protein interaction data.",
		Fields:      "interactor_a, interactor_b, genome_id_a, genome_id_b, gene_a, gene_b, interaction_type, detection_method",
	},
	"spike_variant": {
		Description: "SARS-CoV-2 spike protein variant information.",
		Fields:      "aa_variant, country, region, month, sequence_features, growth_rate, prevalence, total_isolates",
	},
	"spike_lineage": {
		Description: "SARS-CoV-2 lineage and variant classifications.",
		Fields:      "lineage, lineage_of_concern, country, region, month, prevalence, growth_rate, total_isolates",
	},
	"serology": {
		Description: "Serological test results and antibody response data.",
		Fields:      "sample_identifier, host_type, host_species, test_type, test_result, test_antigen, collection_date",
	},
	"protein_feature": {
		Description: "Protein domain and functional feature annotations.",
		Fields:      "id, genome_id, patric_id, gene, product, feature_type, source, source_id, description, start, end",
	},
	"structured_assertion": {
		Description: "Curated functional assertions and annotations.",
		Fields:      "id, patric_id, refseq_locus_tag, property, value, source, evidence_code, pmid",
	},
}

// listCollections renders the collection catalog sorted by name.
func listCollections() string {
	names := make([]string, 0, len(collectionHelp))
	for name := range collectionHelp {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available Solr collections:\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- **%s** - %s\n", name, collectionHelp[name].Description)
	}
	return b.String()
}

// lookupCollection renders the help text for one collection, or the
// catalog of valid names when the collection is unknown.
func lookupCollection(collection string) string {
	help, ok := collectionHelp[collection]
	if !ok {
		names := make([]string, 0, len(collectionHelp))
		for name := range collectionHelp {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("Unknown collection: %s. Available collections: %s",
			collection, strings.Join(names, ", "))
	}
	return fmt.Sprintf("Collection: %s\n\n%s\n\nCommon fields: %s",
		collection, help.Description, help.Fields)
}

const queryInstructions = `BV-BRC Query Tool Instructions

BASIC QUERY PARAMETERS:
- filter: Solr query expression for filtering results
  Examples:
    - field_name:value - exact match
    - field_name:"value" - exact match with quotes for strings
    - field_name:[value1 TO value2] - range query
    - field_name:*value* - wildcard search
    - field_name:value1 OR field_name:value2 - OR logic
    - field_name:value1 AND field_name:value2 - AND logic
    - -field_name:value - NOT logic (exclude)

- select: Comma-separated list of fields to return
  Example: "genome_id,genome_name,species,strain"

- sort: Field name to sort by (optional)
  Example: "genome_name asc" or "date_inserted desc"

QUERY EXAMPLES:
1. Find genomes by species: species:"Escherichia coli"
2. Find genomes with specific strain: strain:*K-12*
3. Get recent entries: date_inserted:[2023-01-01T00:00:00Z TO *]
4. Multiple conditions: species:"Escherichia coli" AND strain:*K-12*

PAGINATION:
- Results are paged with a cursor. Pass the nextCursorId from one page
  as cursor_id to fetch the next page; omit it for the first page.
- Set count_only to true to get just the total match count.

TIPS:
- Use quotes for exact string matches and * for wildcards.
- Use select to return only needed fields for better performance.
- Check collection-specific fields with solr_collection_parameters.`
