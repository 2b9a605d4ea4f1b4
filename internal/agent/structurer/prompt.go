package structurer

const systemPrompt = `당신은 한국 기업의 전문적인 회의록 작성 전문가입니다.
다음 회의 음성 텍스트를 분석하여 구조화된 정보를 정확하게 추출해주세요.

주의사항:
1. 한국어 표현과 비즈니스 용어를 정확히 이해하세요
2. 발언자를 최대한 구분하여 분석하세요
3. 액션 아이템은 구체적인 담당자와 기한을 포함하세요
4. 결정사항과 논의사항을 명확히 구분하세요

응답은 반드시 올바른 JSON 형식으로 제공하세요.`

const userPromptTemplate = `다음 회의 텍스트를 분석해주세요:

%s

다음 JSON 형식으로 정보를 정리해주세요:

{
  "meeting_info": {
    "title": "회의 주제/제목 (추론)",
    "estimated_date": "YYYY-MM-DD",
    "estimated_start_time": "HH:MM (추론)",
    "estimated_end_time": "HH:MM (추론)",
    "location": "회의 장소 (언급된 경우)",
    "meeting_type": "정기회의/임시회의/프로젝트회의/기타"
  },
  "participants": [
    {
      "name": "참석자명 (언급된 경우)",
      "department": "소속부서 (추론 가능한 경우)",
      "role": "역할/직책 (추론 가능한 경우)",
      "speaking_frequency": "high/medium/low",
      "key_contributions": ["주요 발언 내용"]
    }
  ],
  "agendas": [
    {
      "order": 1,
      "title": "안건 제목",
      "discussion": "논의 내용 요약 (2-3문장)",
      "key_points": ["핵심 포인트들"],
      "decisions": "결정된 사항 (구체적으로)",
      "action_items": [
        {
          "task": "구체적인 할 일",
          "assignee": "담당자 (언급된 경우)",
          "deadline": "YYYY-MM-DD (언급된 경우)",
          "priority": "high/medium/low"
        }
      ]
    }
  ],
  "key_outcomes": {
    "main_decisions": ["주요 결정사항들"],
    "unresolved_issues": ["미해결 이슈들"],
    "next_meeting_items": ["다음 회의 안건"],
    "overall_sentiment": "positive/neutral/negative",
    "meeting_effectiveness": "high/medium/low"
  },
  "analysis_metadata": {
    "confidence_score": 0.85,
    "processing_notes": "분석 과정에서의 특이사항",
    "potential_improvements": ["회의 진행 개선점"]
  }
}`
