package prompts

const spec = `Respond with a JSON object matching this exact structure:

{
  "company": "<company name>",
  "quarter": "<fiscal quarter and year>",
  "financial_sentiment": "positive | neutral | cautious | negative",
  "confidence_level": "high | medium | low",
  "key_highlights": ["<highlight>"],
  "risks_and_concerns": ["<risk>"],
  "management_commitments": ["<commitment>"],
  "guidance_outlook": ["<guidance>"],
  "analyst_focus_areas": ["<focus area>"]
}

Field constraints:
- company: Company name as stated in the transcript.
- quarter: Reporting period as stated (e.g., "Q2 FY25").
- financial_sentiment: Exactly one of positive, neutral, cautious, negative.
- confidence_level: Exactly one of high, medium, low, reflecting how clearly
  the transcript supports the sentiment.
- List fields: Arrays of strings. Use an empty array when the transcript
  does not cover the topic. Do not repeat an item in more than one list.

Behavioral constraints:
- Always respond with valid JSON only, no markdown fencing and no commentary
- Do not add fields beyond those listed above`
