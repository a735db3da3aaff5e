package storefront

// CustomerByEmailQuery finds a customer using the admin search syntax.
const CustomerByEmailQuery = `query CustomerByEmail($query: String!, $first: Int!) {
  customers(first: $first, query: $query) {
    nodes {
      id
      email
      tags
    }
  }
}`

// SalesRepsQuery lists sales rep metaobjects with their profile fields.
const SalesRepsQuery = `query SalesReps($type: String!, $first: Int!) {
  metaobjects(type: $type, first: $first) {
    nodes {
      id
      handle
      name: field(key: "name") { value }
      email: field(key: "email") { value }
      phone: field(key: "phone") { value }
      extension: field(key: "extension") { value }
      image: field(key: "image") {
        reference {
          ... on MediaImage {
            image { url }
          }
        }
      }
    }
  }
}`

// TagsRemoveMutation removes tags from a customer.
const TagsRemoveMutation = `mutation RemoveTags($id: ID!, $tags: [String!]!) {
  tagsRemove(id: $id, tags: $tags) {
    node { id }
    userErrors { field message }
  }
}`

// AssignSalesRepMutation sets the rep metafield and adds the rep tags in one call.
const AssignSalesRepMutation = `mutation AssignSalesRep($metafields: [MetafieldsSetInput!]!, $id: ID!, $tags: [String!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields { id namespace key type value }
    userErrors { field message code }
  }
  tagsAdd(id: $id, tags: $tags) {
    node { id }
    userErrors { field message }
  }
}`
