package openai

// analysisPrompt — фиксированная инструкция для vision-модели.
// Формат ответа: JSON с шестью обязательными критериями и опциональным
// faces (null, если лиц на изображении нет).
const analysisPrompt = `Analyze this image for quality and provide scores from 1-100 for each criterion.
Return your analysis as a JSON object with this exact structure:

{
    "sharpness": {"score": <1-100>, "explanation": "<brief explanation>"},
    "lighting": {"score": <1-100>, "explanation": "<brief explanation>"},
    "composition": {"score": <1-100>, "explanation": "<brief explanation>"},
    "color": {"score": <1-100>, "explanation": "<brief explanation>"},
    "exposure": {"score": <1-100>, "explanation": "<brief explanation>"},
    "faces": {"score": <1-100>, "explanation": "<brief explanation>"} OR null if no faces present,
    "overall": {"score": <1-100>, "explanation": "<brief overall assessment>"}
}

Scoring criteria:
- sharpness: Focus and clarity of the image
- lighting: Quality and balance of lighting
- composition: Framing, rule of thirds, visual balance
- color: Color accuracy, white balance, saturation appropriateness
- exposure: Proper exposure, no blown highlights or crushed blacks
- faces: Quality of any faces (expression, focus, lighting on face). Set to null if no faces.
- overall: Weighted average considering all factors, with brief overall assessment

Keep explanations concise (1-2 sentences max). Return ONLY the JSON object, no additional text.`
