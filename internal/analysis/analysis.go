// Package analysis talks to the generative-AI gateway that performs the
// actual compliance reasoning. This service never interprets ingredients
// itself; it ships the image or text to the model and hands the raw JSON
// response to the verdict normalizer.
package analysis

import (
	"context"
	"encoding/json"
)

// Client is the analysis gateway surface. Implementations make exactly one
// remote call per method invocation, with no implicit retry; callers absorb
// failures through the verdict normalizer.
type Client interface {
	// AnalyzeImage submits a JPEG product photo for compliance analysis.
	AnalyzeImage(ctx context.Context, image []byte) (json.RawMessage, error)
	// AnalyzeText submits an ingredient list or product name as free text.
	AnalyzeText(ctx context.Context, text string) (json.RawMessage, error)
	// VerifyLogo submits a certification-logo photo for authenticity checks.
	VerifyLogo(ctx context.Context, image []byte) (json.RawMessage, error)
	// AskScholar answers a follow-up question about a prior analysis.
	AskScholar(ctx context.Context, question, analysisContext string) (string, error)
}

const responseSchemaInstruction = `
Respond with a single JSON object and nothing else, matching exactly:
{
  "productName": string,
  "status": "HALAL" | "DOUBTFUL" | "HARAM",
  "confidenceScore": integer 0-100,
  "reason": string,
  "scholarNote": string,
  "ingredients": [string],
  "alternatives": [string],
  "origin": string,
  "certification": string
}`

const imagePrompt = `Analyze this product image for Halal compliance.
1. Identify the product name.
2. Identify the Country of Origin if visible (e.g., "Made in UK", "Product of USA").
3. Look for Halal Certification logos or text (e.g., "Halal Certified", "IFANCA", "HMC").
4. Check ingredients for any haram or doubtful substances (e.g., alcohol, animal rennet, gelatin, carmine, emulsifiers of unknown origin like E471).
5. Provide a confidence score (0-100) based on how clearly the ingredients/product can be identified.
6. Determine status: HALAL, DOUBTFUL, or HARAM.
7. Provide a scholar note with advice.
8. Suggest 3 Halal alternatives if the product is not clearly Halal.
` + responseSchemaInstruction

const textPrompt = `Analyze the following text (ingredients list or product name) for Halal compliance: %q.
Determine status: HALAL, DOUBTFUL, or HARAM.
Identify the product name if mentioned, otherwise use "Text Analysis".
Highlight specific ingredients that cause concern.
Infer origin or certification if mentioned in the text.
` + responseSchemaInstruction

const logoPrompt = `This image should show a Halal certification logo or certificate.
Identify the certification body (e.g., JAKIM, IFANCA, HMC, MUIS) and judge whether the logo looks authentic.
Use the certification body as the product name, status HALAL if the certification is recognized and authentic, DOUBTFUL otherwise.
Explain the certification body in the scholar note.
` + responseSchemaInstruction

const scholarPrompt = `You are a friendly and knowledgeable Halal food scholar AI assistant.
The user is asking a question about a product with this analysis context:
%s

User Question: %q

Provide a concise, helpful answer (max 3 sentences). Explain specific E-codes or ingredients if asked.
Be polite and definitive where possible, but advise caution if unsure.`
