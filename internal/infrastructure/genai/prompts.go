package genai

import "strings"

// Vocabulary is the closed set of catalog use tags the classifier may answer with.
var Vocabulary = []string{
	"Abortifacient", "Acrid", "Adaptogen", "Alterative", "Anaesthetic", "Analgesic",
	"Anaphrodisiac", "Anodyne", "Antacid", "Anthelmintic", "Antiaphonic", "Antiarthritic",
	"Antiasthmatic", "Antibilious", "Antibiotic", "Antibacterial", "Anticholesterolemic",
	"Anticoagulant", "Antidandruff", "Antidermatosic", "Antidote", "Antiecchymotic", "Antiemetic",
	"Antifungal", "Antihaemorrhoidal", "Antihalitosis", "Antihydrotic", "Antiinflammatory",
	"Antiperiodic", "Antiphlogistic", "Antipruritic", "Antipyretic", "Antirheumatic",
	"Antiscorbutic", "Antiscrophulatic", "Antiseptic", "Antispasmodic", "Antitumor",
	"Antitussive", "Antivinous", "Antiviral", "Aperient", "Aphrodisiac", "Appetizer",
	"Aromatherapy", "Aromatic", "Astringent", "Bach", "Balsamic", "Bitter", "Blood purifier",
	"Blood tonic", "Cancer", "Cardiac", "Cardiotonic", "Carminative", "Cathartic", "Cholagogue",
	"Contraceptive", "Cytostatic", "Cytotoxic", "Decongestant", "Demulcent", "Deobstruent",
	"Deodorant", "Depurative", "Detergent", "Diaphoretic", "Digestive", "Disinfectant",
	"Diuretic", "Emetic", "Emmenagogue", "Emollient", "Enuresis", "Errhine", "Expectorant",
	"Febrifuge", "Foot care", "Galactofuge", "Galactogogue", "Haemolytic", "Haemostatic",
	"Hallucinogenic", "Hepatic", "Hydrogogue", "Hypnotic", "Hypoglycaemic", "Hypotensive",
	"Infertility", "Irritant", "Kidney", "Laxative", "Lenitive", "Lithontripic", "Miscellany",
	"Mouthwash", "Mydriatic", "Narcotic", "Nervine", "Nutritive", "Odontalgic", "Ophthalmic",
	"Oxytoxic", "Parasiticide", "Pectoral", "Plaster", "Poultice", "Purgative", "Refrigerant",
	"Resolvent", "Restorative", "Rubefacient", "Salve", "Sedative", "Sialagogue", "Skin",
	"Sternutatory", "Stimulant", "Stings", "Stomachic", "Styptic", "TB", "Tonic", "Uterine tonic",
	"Vasoconstrictor", "Vasodilator", "VD", "Vermifuge", "Vesicant", "Vulnerary", "Warts",
	"Women's complaints",
}

const extractPrompt = `You extract symptoms from a person's description of how they feel.
Return only a JSON object with a single key "symptoms" whose value lists each symptom phrase
with the cause or context the person gave for it, or "" when none was given.

Example input: I have a headache from staring at screens and feel nauseous
Example output: {"symptoms": [{"symptom": "headache", "context": "staring at screens"}, {"symptom": "nausea", "context": ""}]}`

var classifyPrompt = `You classify symptoms into botanical medical-use categories.
Allowed categories: ` + strings.Join(Vocabulary, ", ") + `.

The user sends a JSON object {"inputs": [...]} of symptom strings, some with context.
Return only a JSON object {"outputs": [...]} pairing every input string, exactly as given,
with the single best matching category from the allowed list.

Example input: {"inputs": ["stomach ache due to gas", "nausea due to pregnancy"]}
Example output: {"outputs": [{"input": "stomach ache due to gas", "tag": "Carminative"}, {"input": "nausea due to pregnancy", "tag": "Antiemetic"}]}`

const recipePrompt = `You create one recipe that showcases a plant, given its common name,
scientific name and a description of its edible uses.
Return only a JSON object {"output": {"recipeName": string, "ingredients": [string], "instructions": string}}.`
