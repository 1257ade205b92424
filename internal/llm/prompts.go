package llm

const contradictionSystemPrompt = `You are a cognitive contradiction detector. Your task is to determine if two memory fragments genuinely contradict each other or if they are just describing different contexts, perspectives, or times.

Respond ONLY with a JSON object containing:
- 'is_contradiction': boolean
- 'reasoning': string explaining why it is or isn't a contradiction
- 'severity': 'low', 'medium', 'high', or 'critical' (only if is_contradiction is true)
- 'resolution_suggestion': string suggesting how to resolve (e.g., 'override with new', 'keep both with context', 'ask user')`

const contradictionPrompt = `New Memory: %s

Existing Memory: %s

Analyze these two fragments. Do they make contradictory claims about the same entity, event, or principle?`

const entityExtractionPrompt = `You are an entity extraction expert. Extract all relevant entities (people, places, organizations, products, concepts) mentioned in the text below.

Respond ONLY with a JSON array of entity names, e.g. ["Alice", "Berlin"]. If no entities are present, respond with an empty array: []

Text:
%s`
