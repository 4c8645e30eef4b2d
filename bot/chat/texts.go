package chat

// Conversation strings. The flow is Portuguese-only.
const (
	menuHeaderText = "Menu Principal:"

	aiOptionLabel = "🤖 Tirar dúvidas com IA"
	aiOptionValue = "IA"

	askPhoneFmt = "Prazer %s, agora digite seu Whatsapp com DDD (ex 11977777777):"

	phoneAcceptedText = "Perfeito! 📱\n🎯 Como posso ajudar você hoje?"

	invalidPhoneText = "Número inválido. Digite apenas números com DDD (ex: 11977777777)."

	aiModeEnterText = "Você agora está falando com a IA. Como posso ajudar?"

	humanRedirectFmt = "Entendido! Estou te redirecionando para um atendente de %s no WhatsApp..."

	departmentEnterFmt = "Você está no departamento %s. Qual a sua dúvida?"

	didNotUnderstandText = "Não entendi sua escolha. Por favor, selecione uma opção do menu ou digite 'menu'."

	numberedInstructionText = "\n\n(Responda com o número ou clique na opção)"

	internalFaultText = "Desculpe, ocorreu um erro inesperado. Pode tentar novamente?"

	defaultSystemPrompt = "Você é um assistente virtual da BHS Eletrônica. \n" +
		"Use o contexto abaixo para responder à pergunta do usuário. \n" +
		"Se a resposta não estiver no contexto, diga que não encontrou a informação específica, " +
		"mas tente ajudar com conhecimentos gerais de eletrônica se possível."

	departmentExpertFmt = "Você é um especialista do departamento %s da BHS."
)
