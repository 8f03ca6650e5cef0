package llm

import "fmt"

// NoAnswerText is the canned reply used when retrieval finds nothing; it is
// also what the model is instructed to say when the context lacks the answer.
const NoAnswerText = "I couldn't find any relevant information in the document to answer this question."

// SystemInstruction steers the model toward grounded, cited answers.
const SystemInstruction = `You are a helpful AI assistant that answers questions about documents.
You provide accurate, concise answers based only on the provided context.
You cite sources with page numbers when possible.
You are honest when information is not available in the context.`

// ChatPrompt renders the user prompt for one question over retrieved context.
func ChatPrompt(question, context, documentTitle string) string {
	return fmt.Sprintf(`You are an intelligent assistant helping users understand their documents.

Document Title: %s

Context from the document:
%s

User Question: %s

Instructions:
1. Answer the question based ONLY on the context provided above
2. Be specific and accurate
3. If the context doesn't contain the answer, say "I cannot find this information in the document"
4. Use natural, conversational language
5. Cite page numbers when relevant
6. Keep answers concise but complete

Answer:`, documentTitle, context, question)
}
