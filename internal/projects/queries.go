package projects

// Project field metadata. Single select fields carry their options so status
// names can be resolved to option IDs for mutations.
const queryProjectFields = `
query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: 20) {
        nodes {
          ... on ProjectV2Field {
            id
            name
            dataType
          }
          ... on ProjectV2SingleSelectField {
            id
            name
            dataType
            options {
              id
              name
            }
          }
        }
      }
    }
  }
}`

// One page of board items. The cursor walks pages of 100 until
// hasNextPage goes false.
const queryProjectItems = `
query($projectId: ID!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: 100, after: $cursor) {
        pageInfo {
          hasNextPage
          endCursor
        }
        nodes {
          id
          databaseId
          type
          content {
            ... on Issue {
              number
              title
              body
              url
              state
              createdAt
              updatedAt
              author {
                login
              }
              assignees(first: 20) {
                nodes {
                  login
                }
              }
              labels(first: 20) {
                nodes {
                  name
                }
              }
            }
            ... on PullRequest {
              number
              title
              body
              url
              state
              createdAt
              updatedAt
              author {
                login
              }
              assignees(first: 20) {
                nodes {
                  login
                }
              }
              labels(first: 20) {
                nodes {
                  name
                }
              }
            }
            ... on DraftIssue {
              title
              body
            }
          }
          fieldValues(first: 20) {
            nodes {
              ... on ProjectV2ItemFieldTextValue {
                text
                field {
                  ... on ProjectV2FieldCommon {
                    name
                  }
                }
              }
              ... on ProjectV2ItemFieldSingleSelectValue {
                name
                field {
                  ... on ProjectV2FieldCommon {
                    name
                  }
                }
              }
              ... on ProjectV2ItemFieldNumberValue {
                number
                field {
                  ... on ProjectV2FieldCommon {
                    name
                  }
                }
              }
              ... on ProjectV2ItemFieldDateValue {
                date
                field {
                  ... on ProjectV2FieldCommon {
                    name
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// A single item with its issue comments, for the detail view.
const queryProjectItem = `
query($itemId: ID!) {
  node(id: $itemId) {
    ... on ProjectV2Item {
      id
      databaseId
      type
      content {
        ... on Issue {
          number
          title
          body
          url
          state
          createdAt
          updatedAt
          author {
            login
          }
          assignees(first: 20) {
            nodes {
              login
            }
          }
          labels(first: 20) {
            nodes {
              name
            }
          }
          comments(first: 50) {
            nodes {
              author {
                login
              }
              body
              createdAt
            }
          }
        }
        ... on PullRequest {
          number
          title
          body
          url
          state
          createdAt
          updatedAt
          author {
            login
          }
          assignees(first: 20) {
            nodes {
              login
            }
          }
          labels(first: 20) {
            nodes {
              name
            }
          }
          comments(first: 50) {
            nodes {
              author {
                login
              }
              body
              createdAt
            }
          }
        }
        ... on DraftIssue {
          title
          body
        }
      }
      fieldValues(first: 20) {
        nodes {
          ... on ProjectV2ItemFieldTextValue {
            text
            field {
              ... on ProjectV2FieldCommon {
                name
              }
            }
          }
          ... on ProjectV2ItemFieldSingleSelectValue {
            name
            field {
              ... on ProjectV2FieldCommon {
                name
              }
            }
          }
          ... on ProjectV2ItemFieldNumberValue {
            number
            field {
              ... on ProjectV2FieldCommon {
                name
              }
            }
          }
          ... on ProjectV2ItemFieldDateValue {
            date
            field {
              ... on ProjectV2FieldCommon {
                name
              }
            }
          }
        }
      }
    }
  }
}`

// Board columns are modeled as a single select field, so moving an item is
// setting that field's option.
const mutationMoveItem = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $optionId: String!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $projectId
    itemId: $itemId
    fieldId: $fieldId
    value: {
      singleSelectOptionId: $optionId
    }
  }) {
    projectV2Item {
      id
      databaseId
    }
  }
}`

// Board lookups by owner login and project number, as they appear in URLs.
const queryUserProject = `
query($login: String!, $number: Int!) {
  user(login: $login) {
    projectV2(number: $number) {
      id
      title
      number
      url
    }
  }
}`

const queryOrgProject = `
query($login: String!, $number: Int!) {
  organization(login: $login) {
    projectV2(number: $number) {
      id
      title
      number
      url
    }
  }
}`
