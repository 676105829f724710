package leads

// researchPrompt asks for scored prospective customers. Arguments:
// %[1]s source company block, %[2]s document insights block (may be
// empty), %[3]d number of leads.
const researchPrompt = `You are a B2B sales lead scout.
Using the source company information below, find exactly %[3]d companies that would be good sales targets for the source company's products or services.
The source company must be the seller. Exclude its competitors, its suppliers and companies it would merely partner with or buy from.

Source company:
%[1]s
%[2]s
Search the web for more information about the source company first, then look for prospects using these criteria:

1. Industry synergy: complementary industries, or the same industry where the prospect is a buyer rather than a competitor.
2. Business model fit: the prospect can improve its business using the source company's products or services.
3. Growth stage: the prospect is at a stage where it is likely to need the source company's solution.
4. Market access: the source company can plausibly reach the prospect through its network.
5. Location: prefer companies in the same country as the source company, and closer regions over farther ones.
6. Size: more employees, revenue and profit are preferred.
7. Current problems: the closer the prospect's problems are to what the source company solves, the better.

Compute relevance_score in [0, 1] as a weighted sum of:

| Criterion | Measure | Weight |
|-----------|---------|--------|
| Industry fit | prospect is in a core target industry | 30%% |
| Revenue | most recent annual revenue | 20%% |
| Growth | average growth over the last three years | 20%% |
| Geography | located in a strategic region | 10%% |
| News | positive news coverage in the last year | 10%% |
| Business fit | clear scenario for using the source company's offering | 10%% |

Respond with JSON in exactly this shape:
{
  "leads": [
    {
      "company": "company name",
      "industry": "industry",
      "sales": annual revenue as a number,
      "total_funding": total funding as a number,
      "homepage": "website URL",
      "key_executive": "key executive",
      "address": "company address",
      "email": "contact email",
      "phone_number": "contact phone",
      "relevance_score": number between 0.0 and 1.0,
      "reasoning": "why this company is a good sales target for the source company, based on the criteria above"
    }
  ]
}

Rules:
1. Include only information you verified.
2. Only give homepage URLs that really exist. Leave the homepage as "" when unsure, and never guess a URL from the company name.
3. Include only information confirmed through web search.
4. Explain concretely how the prospect benefits from the source company's products or services.`

// unknownValue stands in for a missing source company attribute.
const unknownValue = "Unknown"
