package usecase

import "github.com/medassist-app/medassist/internal/core/domain"

const extractionPrompt = "Extract all the text from this medical report image. Provide only the extracted text without any additional comments or formatting."

const chatSystemPrompt = "You are a medical assistant chatbot. Only answer questions related to medicine, health, or medical topics. If the query is not related to medicine, politely decline to answer and suggest asking a medical question."

func buildSimplifyPrompt(text string) string {
	return "Simplify the following medical report text into simple, easy-to-understand words. Explain any medical terms in plain language. Provide only the simplified text:\n\n" + text
}

func modalityPrompt(modality domain.ImageModality) string {
	switch modality {
	case domain.ModalityXRay:
		return "You are a radiologist analyzing an X-ray image. Identify any fractures, dislocations, or abnormalities in bones and joints. Describe the affected areas precisely, assess severity, and provide medical insights. Note: This is not a diagnosis - consult a healthcare professional."
	case domain.ModalityCTScan:
		return "You are a radiologist analyzing a CT scan image. Identify any abnormalities in organs, tissues, or structures. Describe findings in detail, assess potential conditions, and provide medical insights. Note: This is not a diagnosis - consult a healthcare professional."
	case domain.ModalityMRIScan:
		return "You are a radiologist analyzing an MRI scan image. Identify any abnormalities in soft tissues, brain, spine, or joints. Describe findings in detail, assess potential conditions, and provide medical insights. Note: This is not a diagnosis - consult a healthcare professional."
	case domain.ModalitySkinRash:
		return "You are a dermatologist analyzing a skin condition image. Describe the rash appearance, distribution, and characteristics. Suggest possible causes and provide general treatment recommendations. Note: This is not a diagnosis - consult a healthcare professional."
	default:
		return "Describe this medical image in detail and provide any relevant medical observations."
	}
}
