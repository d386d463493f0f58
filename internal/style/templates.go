package style

const defaultStyleTemplate = `# Standup Style Customization

Customize how your standup summaries are generated by editing this file.
The instructions here are passed to the summarizer verbatim.

## Example instructions (uncomment and modify as needed):

# - Keep summaries very concise (3-5 bullet points max)
# - Group items by project/repo instead of activity type
# - Skip the blockers section unless there's something critical
# - Focus on outcomes and impact, not just what was done
# - Include PR/issue numbers as links
# - Use past tense for completed work, present for ongoing

## Your custom instructions:

`

const defaultExamplesTemplate = `# Example Standups

Add real examples of standups you like here. The summarizer uses these as
reference for tone, format, and level of detail.

## Example 1

` + "```" + `
Did:
- merged js sdk error tracking work - pr
- added metrics for the nodejs processing pipeline - pr
- refactored the eval PR to add an NA option after review feedback - pr

Will do:
- register both workflows in prod once clustering pr3 lands
- docs and next steps for the errors tab
` + "```" + `

## Example 2

` + "```" + `
Did:
- PR reviews
- Pairing session to walk through the tracing setup
- Working on a way to not re-run queries for traces

Will do:
- Onboarding session
- Prompt management SDK work
` + "```" + `

---
Add your own examples below, or replace the examples above:

`
