package extract

// fieldSystemText is the system prompt for single-field extraction.
const fieldSystemText = "You are a structured data extractor."

// fieldPrompt asks for one field. Args: company, field, reference text.
const fieldPrompt = `You are a company analyst with internal knowledge about "%[1]s".
To give more accurate and current information, also use the web search results below.

Goal:
- Extract accurate information for the "%[2]s" item as JSON.
- Combine your internal knowledge with the external web text.
- For recent facts and figures (revenue, CEO, and so on), trust the text below first.
- If the information is unclear, use null.

Company name: "%[1]s"
Requested item: "%[2]s"

### Reference text:
%[3]s

### Response format (JSON only):
{"%[2]s": <value as a string>}`

// profileSystemText is the system prompt for document profile extraction.
const profileSystemText = "You are a company analysis expert that extracts structured information from PDF documents."

// profilePrompt asks for the fixed analysis schema. Args: company, text.
const profilePrompt = `You are a company analyst. Analyze the text extracted from a PDF below and extract detailed information about the company "%[1]s".

Return the following keys as a JSON object, as accurately as possible:

- industry: the company's industry (e.g. "software", "manufacturing")
- sales: annual revenue (number only, no units)
- total_funding: total funding raised (number only, no units)
- homepage: company homepage URL
- key_executive: key executive (CEO etc.)
- address: company address
- email: contact email
- phone_number: contact phone number
- company_description: company description and core business (under 500 characters)
- products_services: main products and services (comma-separated list)
- target_customers: main target customers (comma-separated list)
- competitors: main competitors (comma-separated list)
- strengths: company strengths (comma-separated list)
- business_model: business model description (under 300 characters)

Mark anything the text does not clearly state as null or omit it.
Only include revenue or funding figures that are certain; do not guess.

PDF text:
%[2]s

Respond with JSON only. Do not include any other text or explanation.`
