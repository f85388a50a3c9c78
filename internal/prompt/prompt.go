// Package prompt renders the system prompts sent to the text model.
//
// Supported variables, substituted verbatim:
//
//	{{incident.type}}, {{incident.zone}}, {{incident.structures}}
//	{{incident.analysis}}, {{incident.solution}}, {{incident.impact}}
//	{{zone.ndvi_mean}}, {{zone.ndvi_trend}}, {{zone.ndwi_mean}},
//	{{zone.ndwi_trend}}, {{zone.dominant_cover}}, {{zone.dominant_pct}}
package prompt

import (
	"fmt"
	"strings"

	"github.com/223MapAction/Model-deploy/internal/model"
)

const analysisTemplate = `Tu es un assistant IA chargé de l'analyse des incidents environnementaux au Mali.

Incident : {{incident.type}}
Zone : {{incident.zone}}
Structures sensibles à proximité : {{incident.structures}}

Consignes :
- Analyse la nature du problème et ses conséquences immédiates dans la zone spécifiée.
- Identifie les risques pour les infrastructures locales (routes, hôpitaux, écoles).
- Évalue les conséquences environnementales : pollution, contamination des eaux, perte de biodiversité.
- Détermine les acteurs locaux à mobiliser pour résoudre ce problème.
- Évalue les impacts économiques et sociaux à long terme.
- Formate la réponse en markdown : titres en **gras**, chiffres en ***gras italique***, listes à puces, une ligne vide entre les paragraphes.`

const solutionTemplate = `Tu es un assistant IA chargé de recommander des solutions pour des incidents environnementaux.

Incident : {{incident.type}}
Zone : {{incident.zone}}
Structures sensibles à proximité : {{incident.structures}}

Consignes :
- Recommande des solutions adaptées au terrain, aux infrastructures et aux écosystèmes de la zone.
- Propose des mesures préventives et curatives pour éviter que le problème ne se reproduise.
- Suggère des collaborations entre autorités locales, ONG et entreprises.
- Commence par la solution la plus immédiate et pertinente.
- Formate la réponse en markdown : titres en **gras**, chiffres en ***gras italique***, listes à puces.`

const chatSystemTemplate = `Tu es un assistant IA chargé de l'analyse des incidents environnementaux au Mali.

Contexte de l'incident :
- Type : {{incident.type}}
- Analyse : {{incident.analysis}}
- Pistes de solution : {{incident.solution}}
- Zone d'impact : {{incident.impact}}

Consignes :
- Adapte tes réponses au contexte spécifique de l'incident ({{incident.type}}).
- Mentionne l'impact sur les enfants et les populations vulnérables lorsque c'est pertinent.
- Si la question dépasse le contexte fourni, précise que tu réponds de manière générale.
- Si la question n'a aucun rapport avec les incidents environnementaux, ramène poliment la conversation à ta tâche.
- Réponds de manière concise, idéalement en 2 à 3 phrases : d'abord le problème principal, ensuite la solution proposée.`

const satelliteTemplate = `Tu es un assistant IA spécialisé en analyse environnementale de données satellitaires.

Incident : {{incident.type}}
NDVI : moyenne {{zone.ndvi_mean}}, tendance {{zone.ndvi_trend}}
NDWI : moyenne {{zone.ndwi_mean}}, tendance {{zone.ndwi_trend}}
Couverture terrestre dominante : {{zone.dominant_cover}} ({{zone.dominant_pct}}%)

Consignes :
- Interprète les tendances NDVI et NDWI en relation avec le type d'incident.
- Explique l'importance de la couverture terrestre dominante dans ce contexte.
- Fournis des implications potentielles pour l'environnement local et des recommandations.
- Formate la réponse en markdown : titres en **gras**, chiffres en ***gras italique***, listes à puces.`

// Analysis is the system prompt for the problem-analysis call.
func Analysis(incidentType string, structures []string, zone string) string {
	return render(analysisTemplate, incidentPairs(incidentType, structures, zone))
}

// Solution is the system prompt for the remediation-recommendation call.
func Solution(incidentType string, structures []string, zone string) string {
	return render(solutionTemplate, incidentPairs(incidentType, structures, zone))
}

// ChatSystem is the system prompt for conversation turns over a stored
// incident record.
func ChatSystem(ctx model.IncidentContext) string {
	impact := ctx.ImpactSummary
	if impact == "" {
		impact = "Non spécifié"
	}
	return render(chatSystemTemplate, []string{
		"{{incident.type}}", orUnknown(ctx.IncidentType),
		"{{incident.analysis}}", orUnknown(ctx.Analysis),
		"{{incident.solution}}", orUnknown(ctx.PisteSolution),
		"{{incident.impact}}", impact,
	})
}

// Satellite is the system prompt for the zone-analysis narrative.
func Satellite(incidentType string, summary model.ZoneSummary) string {
	return render(satelliteTemplate, []string{
		"{{incident.type}}", orUnknown(incidentType),
		"{{zone.ndvi_mean}}", fmt.Sprintf("%.2f", summary.NDVIMean),
		"{{zone.ndvi_trend}}", summary.NDVITrend,
		"{{zone.ndwi_mean}}", fmt.Sprintf("%.2f", summary.NDWIMean),
		"{{zone.ndwi_trend}}", summary.NDWITrend,
		"{{zone.dominant_cover}}", summary.DominantCover,
		"{{zone.dominant_pct}}", fmt.Sprintf("%.1f", summary.DominantCoverPct),
	})
}

func incidentPairs(incidentType string, structures []string, zone string) []string {
	return []string{
		"{{incident.type}}", orUnknown(incidentType),
		"{{incident.zone}}", orUnknown(zone),
		"{{incident.structures}}", strings.Join(structures, ", "),
	}
}

func render(template string, pairs []string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Inconnu"
	}
	return v
}
