package summarize

const summaryPrompt = `You are a legal research assistant. Summarize the following document in clear, plain language. Keep every statute reference, section number, case name and date that appears. Focus on the legal rules and their consequences.

Document:
%s`

const contextPrompt = `From the following document, extract what matters for answering a legal question: the court or authority involved, the legal principles applied, the provisions and precedents cited, and any considerations a litigant should weigh. Return only the extracted material.

Document:
%s`

const textSummaryPrompt = `Summarize the following text in plain language, keeping all legal references intact.

Text:
%s`
